package payroll

import "timecard.service/internal/core/model"

// ItemField names one comparable line-item field. The diff walks this closed
// set instead of reflecting over arbitrary shapes, so a new pay component
// has to be added here deliberately.
type ItemField string

const (
	FieldRegularMinutes ItemField = "regularMinutes"
	FieldBonusMinutes   ItemField = "bonusMinutes"
	FieldFlatBonus      ItemField = "flatBonus"
	FieldGross          ItemField = "gross"
	FieldDeductions     ItemField = "deductions"
	FieldNet            ItemField = "net"
)

// FieldChange records one field moving from Old to New.
type FieldChange struct {
	Field ItemField `json:"field"`
	Old   float64   `json:"old"`
	New   float64   `json:"new"`
}

// DiffLineItems compares two versions of a line item field by field and
// returns the changes, in declaration order. Revision is deliberately not
// compared; it is an artifact of editing, not an edit.
func DiffLineItems(before, after model.PayrollLineItem) []FieldChange {
	fields := []struct {
		name     ItemField
		from, to float64
	}{
		{FieldRegularMinutes, before.RegularMinutes, after.RegularMinutes},
		{FieldBonusMinutes, before.BonusMinutes, after.BonusMinutes},
		{FieldFlatBonus, before.FlatBonus, after.FlatBonus},
		{FieldGross, before.Gross, after.Gross},
		{FieldDeductions, before.Deductions, after.Deductions},
		{FieldNet, before.Net, after.Net},
	}
	var changes []FieldChange
	for _, f := range fields {
		if f.from != f.to {
			changes = append(changes, FieldChange{Field: f.name, Old: f.from, New: f.to})
		}
	}
	return changes
}
