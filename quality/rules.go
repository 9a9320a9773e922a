package quality

// NullPolicy selects how a table's missing values are handled.
type NullPolicy int

const (
	// DropAnyNull removes every row with a null in any column.
	DropAnyNull NullPolicy = iota
	// DropNullKeys removes rows with a null in one of the key columns.
	DropNullKeys
	// FillCounted fills required columns and counts the filled cells.
	FillCounted
	// FillPresent fills whichever of the fill columns exist, uncounted.
	FillPresent
)

func (p NullPolicy) String() string {
	switch p {
	case DropNullKeys:
		return "drop-null-keys"
	case FillCounted:
		return "fill-counted"
	case FillPresent:
		return "fill-present"
	default:
		return "drop-any-null"
	}
}

// TableRule is the null-handling configuration of one logical table. The
// logical table id is the file name without extension.
type TableRule struct {
	Table  string
	Policy NullPolicy
	// Columns are the key columns of DropNullKeys and the fill order of
	// FillCounted.
	Columns []string
	Fill    map[string]string
}

// DefaultRules returns the rules of the known retail tables. Tables without
// a rule use DropAnyNull.
func DefaultRules() map[string]TableRule {
	contactFill := map[string]string{
		"phone":      "Unknown",
		"email":      "Unknown",
		"zip_code":   "0",
		"store_id":   "0",
		"manager_id": "0",
	}
	return map[string]TableRule{
		"customers": {
			Table:   "customers",
			Policy:  FillCounted,
			Columns: []string{"phone", "email", "last_name"},
			Fill:    map[string]string{"phone": "Unknown", "email": "Unknown", "last_name": "Unknown"},
		},
		"staffs": {
			Table:   "staffs",
			Policy:  FillPresent,
			Columns: []string{"phone", "email", "zip_code", "store_id", "manager_id"},
			Fill:    contactFill,
		},
		"stores": {
			Table:   "stores",
			Policy:  FillPresent,
			Columns: []string{"phone", "email", "zip_code", "store_id", "manager_id"},
			Fill:    contactFill,
		},
		"order_items": {
			Table:   "order_items",
			Policy:  DropNullKeys,
			Columns: []string{"order_id", "product_id"},
		},
	}
}

// RuleFor returns the rule for a table id, defaulting to DropAnyNull.
func RuleFor(rules map[string]TableRule, tableID string) TableRule {
	if rule, ok := rules[tableID]; ok {
		return rule
	}
	return TableRule{Table: tableID, Policy: DropAnyNull}
}
