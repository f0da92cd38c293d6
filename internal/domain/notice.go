package domain

// NoticeLevel is the severity shown on a toast.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a non-blocking, user-facing message.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// User-facing messages shared between services and the HTTP layer.
const (
	MsgSessionExpired   = "Your session has expired. Please log in again."
	MsgPermissionDenied = "You do not have permission to perform this action."
	MsgLoginFailed      = "Login failed. Please check your credentials."
	MsgCheckoutFailed   = "Something went wrong while placing your order. Please try again."
	MsgGenericFailure   = "Something went wrong. Please try again."
)
