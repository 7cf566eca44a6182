// Package service contains the account service: the owner of the
// business rules for the user lifecycle and the asynchronous email
// confirmation workflow. It composes the persistence, token, and
// messaging leaves and is the sole owner of the cross-cutting
// invariants (email uniqueness, role bootstrap ordering, single-use
// confirmation tokens).
package service
