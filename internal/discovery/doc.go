// Package discovery finds tapauth bridges on the local network with mDNS and
// lets a bridge advertise itself.
//
// Bridges register as "_tapauth._tcp" services in the "local." domain. The TXT
// record carries the bridge version and the card feed path:
//
//	version=v1.2.0
//	cards=/ws/cards
//
// Example:
//
//	bridges, err := discovery.NewScanner().Scan(ctx)
//	for _, b := range bridges {
//	    fmt.Println(b.BaseURL())
//	}
package discovery
