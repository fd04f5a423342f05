package models

// Operation enumerates the supported stock transaction kinds.
type Operation string

const (
	OperationAdd    Operation = "add"
	OperationRemove Operation = "remove"
)

// Sign returns +1 for add and -1 for remove.
func (o Operation) Sign() int64 {
	if o == OperationRemove {
		return -1
	}
	return 1
}

// Valid reports whether o is one of the supported operations.
func (o Operation) Valid() bool {
	return o == OperationAdd || o == OperationRemove
}
