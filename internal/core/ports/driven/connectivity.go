package driven

import "context"

// Connectivity reports network reachability before a login is attempted
type Connectivity interface {
	HasInternetAccess(ctx context.Context) bool
}
