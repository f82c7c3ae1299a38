// Package resetpassword implements the stateless forgot-password flow.
// Reset codes are derived from account state and a server secret, so
// nothing is stored and any password or login change invalidates
// outstanding codes.
package resetpassword
