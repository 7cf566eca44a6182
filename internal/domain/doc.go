// Package domain contains the core entity types of the account service
// and the validation rules that apply to them regardless of storage or
// transport concerns.
package domain
