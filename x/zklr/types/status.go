package types

import "fmt"

// TraderStatus is the state of a trader account derived from its flat
// fields at a given time. Exactly one variant applies.
type TraderStatus interface {
	isTraderStatus()
	String() string
}

// Unstaked: no collateral and no live proof window.
type Unstaked struct{}

// StakedUnverified: collateral present, no commitment outstanding.
type StakedUnverified struct {
	Stake uint64
}

// Committed: a proof was accepted and its commitment awaits reveal.
type Committed struct {
	Commitment Digest
	Expiry     int64
}

// Verified: the trader may be allocated bandwidth until Expiry.
type Verified struct {
	Expiry int64
}

// Expired: the proof window has passed. WasVerified records whether the
// trader had been verified before expiry.
type Expired struct {
	WasVerified bool
	Expiry      int64
}

func (Unstaked) isTraderStatus()         {}
func (StakedUnverified) isTraderStatus() {}
func (Committed) isTraderStatus()        {}
func (Verified) isTraderStatus()         {}
func (Expired) isTraderStatus()          {}

func (Unstaked) String() string           { return "unstaked" }
func (s StakedUnverified) String() string { return fmt.Sprintf("staked_unverified(%d)", s.Stake) }
func (s Committed) String() string        { return fmt.Sprintf("committed(%s)", s.Commitment) }
func (s Verified) String() string         { return fmt.Sprintf("verified(until %d)", s.Expiry) }
func (s Expired) String() string          { return fmt.Sprintf("expired(at %d)", s.Expiry) }

// StatusName returns the short lowercase name of a status variant
func StatusName(s TraderStatus) string {
	switch s.(type) {
	case Unstaked:
		return "unstaked"
	case StakedUnverified:
		return "staked_unverified"
	case Committed:
		return "committed"
	case Verified:
		return "verified"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Status derives the account status at now. Accounts that never opened a
// proof window (expiry zero, nothing committed) report Unstaked or
// StakedUnverified; otherwise a passed expiry always wins, so a verified
// status can never carry a stale proof.
func (a TraderAccount) Status(now int64) TraderStatus {
	opened := a.LastProofUpdate != 0 || a.ProofExpiry != 0 || a.IsVerified || !a.Commitment.IsZero()
	if !opened {
		if a.StakedAmount == 0 {
			return Unstaked{}
		}
		return StakedUnverified{Stake: a.StakedAmount}
	}
	if now > a.ProofExpiry {
		return Expired{WasVerified: a.IsVerified, Expiry: a.ProofExpiry}
	}
	if a.IsVerified {
		return Verified{Expiry: a.ProofExpiry}
	}
	if !a.Commitment.IsZero() {
		return Committed{Commitment: a.Commitment, Expiry: a.ProofExpiry}
	}
	if a.StakedAmount == 0 {
		return Unstaked{}
	}
	return StakedUnverified{Stake: a.StakedAmount}
}

// Strikes returns the penalty track: invalid submissions since the last
// accepted proof or slash.
func (a TraderAccount) Strikes() uint32 {
	return a.InvalidProofAttempts
}
