// Package constant holds the closed error-code catalog and the transport
// header names shared by the resilience subpackages.
package constant
