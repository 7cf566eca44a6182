// Package api contains the HTTP handlers, request/response models and
// error mapping for the account management endpoints. Handlers translate
// the transport layer to and from the account service; they hold no
// business rules of their own.
package api
