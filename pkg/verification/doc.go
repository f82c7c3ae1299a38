// Package verification implements code-based channel verification: random
// codes delivered over email or SMS, stored until consumed, and a policy
// that folds per-channel verified flags into one aggregate flag.
package verification
