package cfg

import (
	"github.com/l3aro/go-blockflow/pkg/source"
)

// BuildBlocks partitions lines into basic blocks at the given leaders.
//
// Leaders must be sorted ascending. The block of the i-th leader runs up to,
// but not including, the next leader, and the last block runs to the end of
// input. Leaders outside 1..len(lines) are ignored. Adjacent leaders produce
// single-line blocks. Lines before the first leader belong to no block, which
// never happens for leaders from FindLeaders since they always include 1.
func BuildBlocks(lines []source.Line, leaders []int) []BasicBlock {
	n := len(lines)
	valid := make([]int, 0, len(leaders))
	for _, ld := range leaders {
		if ld < 1 || ld > n {
			continue
		}
		if len(valid) > 0 && valid[len(valid)-1] == ld {
			continue
		}
		valid = append(valid, ld)
	}

	blocks := make([]BasicBlock, 0, len(valid))
	for i, ld := range valid {
		end := n
		if i+1 < len(valid) {
			end = valid[i+1] - 1
		}

		blockLines := make([]source.Line, end-ld+1)
		copy(blockLines, lines[ld-1:end])

		blocks = append(blocks, BasicBlock{
			ID:        BlockID(ld),
			Leader:    ld,
			StartLine: ld,
			EndLine:   end,
			Lines:     blockLines,
		})
	}

	return blocks
}
