package employee

import "errors"

var (
	// ErrInvalidID は空の ID で単一レコード操作を呼び出した場合に返却されます。
	ErrInvalidID = errors.New("employee: invalid id")
	// ErrEmptyResponse は成功応答にレコードが含まれていなかった場合に返却されます。
	ErrEmptyResponse = errors.New("employee: empty response body")
	// ErrIDMismatch は更新応答の ID が要求した ID と異なる場合に返却されます。
	ErrIDMismatch = errors.New("employee: response id does not match request")
)

// 操作結果として通知する文言です。
const (
	MessageListFailed   = "Failed to fetch employees"
	MessageGetFailed    = "Failed to fetch employee"
	MessageCreateFailed = "Failed to create employee"
	MessageUpdateFailed = "Failed to update employee"
	MessageDeleteFailed = "Failed to delete employee"
	MessageCreated      = "Employee created successfully"
	MessageUpdated      = "Employee updated successfully"
	MessageDeleted      = "Employee deleted successfully"
)
