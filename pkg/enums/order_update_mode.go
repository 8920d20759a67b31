package enums

// OrderUpdateMode distinguishes the two write paths for an existing order.
type OrderUpdateMode string

const (
	// OrderUpdateFull rewrites every editable field.
	OrderUpdateFull OrderUpdateMode = "full"
	// OrderUpdateStatus rewrites status and notes only.
	OrderUpdateStatus OrderUpdateMode = "status"
)
