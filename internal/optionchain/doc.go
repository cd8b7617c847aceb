// Package optionchain turns a raw option-chain export into a strict numeric
// table and derives the per-strike views the charts are drawn from.
//
// # Input format
//
// Exchange option-chain exports carry a decorative first row (usually
// "CALLS ... PUTS"), a non-data index column on the left and an empty or
// label column on the right. Between them sit exactly 21 data columns in a
// fixed order: ten call fields, the strike, ten put fields (the put side is
// mirrored). Unquoted strikes use "-" as a placeholder and numbers may be
// comma grouped ("1,500", "18,000.00").
//
// # Pipeline
//
//	RawTable → Normalize → CanonicalTable → BuildViews → Views{LTP, OI, IV}
//
// Normalize never trusts header labels. Columns are assigned to Schema by
// position only. Cells that cannot be read as numbers are treated as missing,
// rows with a missing strike are dropped and every remaining missing cell is
// stored as 0.0.
//
// Zero-fill makes "no quote" and "quoted at zero" indistinguishable for every
// field except IV, where BuildViews drops non-positive readings per side. This
// is a known limitation of the export format handling and is kept on purpose
// because the OI bars are drawn from the filled values.
//
// # Usage
//
//	raw, err := optionchain.ReadCSV(file)
//	if err != nil {
//	    return err
//	}
//	table, err := optionchain.Normalize(raw)
//	if err != nil {
//	    return err // wraps ErrSchema
//	}
//	views := optionchain.BuildViews(table)
package optionchain
