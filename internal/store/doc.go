// Package store defines the persistence contracts used by the account
// service. Implementations live under internal/platform; services depend
// only on the interfaces and sentinel errors declared here.
package store
