// Package models defines the core domain models for debtbook.
//
// # Models
//
//   - Person: a named party that can borrow or lend
//   - Debt: a directed, dated obligation from a borrower to a lender
//   - DebtView: a Debt with borrower and lender names resolved for display
//   - History: an immutable audit entry describing one mutation
//   - PairBalance: the unpaid total for one (borrower, lender) pair
//
// # Design Principles
//
// 1. **IDs, not pointers**: Debts reference people by ID strings (UUID format)
// 2. **Loose history links**: History.DebtID is a lookup hint only; the debt
//    may have been deleted since the entry was written
// 3. **No cascading**: deleting a Person leaves its debts in place, so a
//    DebtView may carry an empty borrower or lender name
package models
