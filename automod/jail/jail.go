// In-memory per-user violation counters, and the escalation tier derived from them.
//
// Counters live for the lifetime of the process only. They only ever grow, except when a user reaches the ban tier: the counter is then set back to [BanResetCount], so the next violation after a ban lands straight in the mute band.
package jail

import (
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type Tier int

const (
	TierWarn Tier = iota
	TierMute
	TierBan
)

func (t Tier) String() string {
	switch t {
	case TierWarn:
		return "warn"
	case TierMute:
		return "mute"
	case TierBan:
		return "ban"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

const (
	// first counter value in the mute band
	MuteThreshold = 3

	// first counter value in the ban band
	BanThreshold = 5

	// counter value stored after a ban fires
	BanResetCount = 3

	// mute length grows with the counter: MuteStep * count
	MuteStep    = 5 * time.Minute
	BanDuration = 24 * time.Hour
)

// Outcome of recording one violation.
type Verdict struct {
	UserID int64
	// counter value after the increment (before any ban reset)
	Count int
	Tier  Tier
	// restriction length; zero for warnings
	Sanction time.Duration
}

// Total function of the counter value. Non-positive counts are treated as warnings.
func TierFor(count int) (Tier, time.Duration) {
	switch {
	case count >= BanThreshold:
		return TierBan, BanDuration
	case count >= MuteThreshold:
		return TierMute, time.Duration(count) * MuteStep
	default:
		return TierWarn, 0
	}
}

// Jail is safe for concurrent use: recording a violation and deriving its tier is a single atomic step per user.
type Jail struct {
	counts *xsync.MapOf[int64, int]
}

func New() *Jail {
	return &Jail{
		counts: xsync.NewMapOf[int64, int](),
	}
}

// Increments the user's counter and returns the resulting tier. When the tier is [TierBan], the stored counter is reset to [BanResetCount] in the same step.
func (j *Jail) Violation(userID int64) Verdict {
	v := Verdict{UserID: userID}
	j.counts.Compute(userID, func(old int, loaded bool) (int, bool) {
		count := old + 1
		v.Count = count
		v.Tier, v.Sanction = TierFor(count)
		if v.Tier == TierBan {
			return BanResetCount, false
		}
		return count, false
	})
	return v
}

// Current counter value (zero for users without violations).
func (j *Jail) Count(userID int64) int {
	c, _ := j.counts.Load(userID)
	return c
}

// Clears a user's history entirely.
func (j *Jail) Forget(userID int64) {
	j.counts.Delete(userID)
}

// Number of users with a violation history.
func (j *Jail) Len() int {
	return j.counts.Size()
}
