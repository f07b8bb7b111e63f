// Package models defines the core domain models for Vikoba rotating payout
// groups.
//
// # Models
//
//   - Group: a rotating savings group with a fixed member order
//   - Member: one participant and their payout position
//   - Contribution: a member's payment into the pot for one cycle
//   - Payout: an immutable ledger entry for a processed cycle
//
// # Design Principles
//
// 1. **Integer money**: all amounts are minor currency units (int64)
// 2. **Derived state**: a group's status is computed from contributions,
// never set by callers
// 3. **Avoid circular references**: relationships use ID strings
package models
