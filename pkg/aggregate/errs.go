package aggregate

import (
	"fmt"

	"github.com/ja7ad/darshan-util/pkg/types"
)

// MalformedRankError reports a record whose rank falls outside
// [0, nprocs) and isn't the Shared sentinel (spec §4.4: "If a record's
// rank is out of range the engine must refuse the record"). Per spec §7
// the record is skipped, not fatal to the module.
type MalformedRankError struct {
	Rank   types.Rank
	NProcs int
}

func (e *MalformedRankError) Error() string {
	return fmt.Sprintf("aggregate: rank %s outside [0, %d)", e.Rank, e.NProcs)
}
