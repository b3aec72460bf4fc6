package game

import "testing"

func TestArrangementCount(t *testing.T) {
	if len(arrangements) != NumArrangements {
		t.Fatalf("generated %d arrangements, want %d", len(arrangements), NumArrangements)
	}
}

func TestEveryArrangementComposition(t *testing.T) {
	seen := make(map[[numPlayers]Role]bool, NumArrangements)
	for i, roles := range arrangements {
		var don, mafia, sheriff, citizens int
		for _, r := range roles {
			switch r {
			case RoleDon:
				don++
			case RoleMafia:
				mafia++
			case RoleSheriff:
				sheriff++
			case RoleCitizen:
				citizens++
			}
		}
		if don != 1 || mafia != 2 || sheriff != 1 || citizens != 6 {
			t.Fatalf("arrangement %d has composition don=%d mafia=%d sheriff=%d citizens=%d", i, don, mafia, sheriff, citizens)
		}
		if seen[roles] {
			t.Fatalf("arrangement %d is a duplicate", i)
		}
		seen[roles] = true
	}
}

func TestSeedZeroCanonicalPlacement(t *testing.T) {
	roles := ArrangementForSeed(0)
	want := [numPlayers]Role{RoleDon, RoleMafia, RoleMafia, RoleSheriff,
		RoleCitizen, RoleCitizen, RoleCitizen, RoleCitizen, RoleCitizen, RoleCitizen}
	if roles != want {
		t.Errorf("seed 0 arrangement = %v, want %v", roles, want)
	}
}

func TestSeedWrapsModulo(t *testing.T) {
	if ArrangementForSeed(0) != ArrangementForSeed(NumArrangements) {
		t.Errorf("seed should wrap modulo the table size")
	}
	if ArrangementForSeed(-1) != ArrangementForSeed(NumArrangements-1) {
		t.Errorf("negative seed should wrap into range")
	}
}

func TestMafiaIndices(t *testing.T) {
	roles := ArrangementForSeed(0)
	got := MafiaIndices(roles)
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("MafiaIndices = %v, want [0 1 2]", got)
	}
}

func TestTeamDerivation(t *testing.T) {
	tests := []struct {
		role Role
		team Team
	}{
		{RoleCitizen, TeamRed},
		{RoleSheriff, TeamRed},
		{RoleMafia, TeamBlack},
		{RoleDon, TeamBlack},
	}
	for _, tc := range tests {
		if got := tc.role.Team(); got != tc.team {
			t.Errorf("%s team = %s, want %s", tc.role, got, tc.team)
		}
	}
}

func TestRoleTokenRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleCitizen, RoleSheriff, RoleMafia, RoleDon} {
		got, ok := RoleFromToken(r.Token())
		if !ok || got != r {
			t.Errorf("RoleFromToken(%s.Token()) = %v, %v", r, got, ok)
		}
	}
}
