package httpapi

const (
	ErrInvalidJSON = "invalid json"
	ErrNotFound    = "not found"
	ErrDependency  = "dependency error"
	ErrLeadTime    = "unsupported lead time"
)
