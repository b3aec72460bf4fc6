package game

// The ten-player setup is always 1 Don, 2 Mafia, 1 Sheriff, 6 Citizens. All
// 10!/(6!*2!*1!*1!) = 2520 distinct placements are enumerated once, in a
// canonical order, so that a seed selects an arrangement reproducibly and the
// distribution over configurations is exactly even.

// NumArrangements is the count of distinct role placements.
const NumArrangements = 2520

// numPlayers mirrors token.NumPlayers without importing it here.
const numPlayers = 10

var arrangements = generateArrangements()

// generateArrangements enumerates placements in canonical order: Don position
// ascending, then the Mafia pair ascending, then the Sheriff position
// ascending. Remaining seats are Citizens.
func generateArrangements() [][numPlayers]Role {
	out := make([][numPlayers]Role, 0, NumArrangements)
	for don := 0; don < numPlayers; don++ {
		for m1 := 0; m1 < numPlayers; m1++ {
			if m1 == don {
				continue
			}
			for m2 := m1 + 1; m2 < numPlayers; m2++ {
				if m2 == don {
					continue
				}
				for sheriff := 0; sheriff < numPlayers; sheriff++ {
					if sheriff == don || sheriff == m1 || sheriff == m2 {
						continue
					}
					var roles [numPlayers]Role
					for i := range roles {
						roles[i] = RoleCitizen
					}
					roles[don] = RoleDon
					roles[m1] = RoleMafia
					roles[m2] = RoleMafia
					roles[sheriff] = RoleSheriff
					out = append(out, roles)
				}
			}
		}
	}
	return out
}

// ArrangementForSeed returns the role placement the seed selects. Seeds wrap
// modulo NumArrangements, negative seeds included.
func ArrangementForSeed(seed int) [numPlayers]Role {
	idx := seed % NumArrangements
	if idx < 0 {
		idx += NumArrangements
	}
	return arrangements[idx]
}

// MafiaIndices lists the Black-team seats of an arrangement in ascending
// order (Don included).
func MafiaIndices(roles [numPlayers]Role) []int {
	var out []int
	for i, r := range roles {
		if r.IsBlack() {
			out = append(out, i)
		}
	}
	return out
}
