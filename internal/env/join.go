package env

// presence describes where a key was found when joining a shop map with the
// matching user map.
type presence int

const (
	missing  presence = iota // in neither map
	shopOnly                 // exists, not configured
	both                     // exists and configured
	userOnly                 // inconsistent: user data for an unknown entity
)

// joined is the result of looking a key up in both maps.
type joined[S, U any] struct {
	state presence
	shop  S
	user  U
}

// join looks key up in a shop map and the matching user map. It is used the
// same way at account and cluster level.
func join[S, U any](shop map[string]S, user map[string]U, key string) joined[S, U] {
	s, inShop := shop[key]
	u, inUser := user[key]
	j := joined[S, U]{shop: s, user: u}
	switch {
	case inShop && inUser:
		j.state = both
	case inShop:
		j.state = shopOnly
	case inUser:
		j.state = userOnly
	default:
		j.state = missing
	}
	return j
}
