package versioning

import (
	"stepwise/internal/content"
)

// Report summarizes a media recovery run.
type Report struct {
	Version         int `json:"version"`
	RecoveredBlocks int `json:"recovered_blocks"`
	StepsTouched    int `json:"steps_touched"`
}

// RecoverMedia copies image blocks with a URL from source into live. A source image missing from
// its live step is inserted; a live block with an empty URL receives the source URL. Live URLs
// are never overwritten, and steps absent from live are not recreated. Steps are matched by id,
// falling back to order index. Running it twice changes nothing the second time.
func RecoverMedia(live, source content.Steps) (content.Steps, Report) {
	out := live.Clone()
	var report Report

	liveIDs := make(map[string]struct{}, len(out))
	for _, s := range out {
		liveIDs[s.ID] = struct{}{}
	}

	for i := range out {
		src, ok := matchStep(out[i], source, liveIDs)
		if !ok {
			continue
		}
		blocks, recovered := recoverBlocks(out[i].Blocks, src.Blocks)
		if recovered == 0 {
			continue
		}
		out[i].Blocks = blocks
		report.RecoveredBlocks += recovered
		report.StepsTouched++
	}
	return out, report
}

func matchStep(step content.Step, source content.Steps, liveIDs map[string]struct{}) (content.Step, bool) {
	if idx, ok := source.Find(step.ID); ok {
		return source[idx], true
	}
	for _, s := range source {
		if s.Order != step.Order {
			continue
		}
		// a source step whose id still exists live belongs to that step
		if _, taken := liveIDs[s.ID]; taken {
			return content.Step{}, false
		}
		return s, true
	}
	return content.Step{}, false
}

func recoverBlocks(live, source content.Blocks) (content.Blocks, int) {
	out := live.Clone()
	recovered := 0
	for srcIdx, b := range source {
		if b.Type != content.BlockImage || !b.HasURL() {
			continue
		}
		idx, found := out.Find(b.ID)
		if !found {
			pos := srcIdx
			if pos > len(out) {
				pos = len(out)
			}
			out = append(out[:pos], append(content.Blocks{b.Clone()}, out[pos:]...)...)
			recovered++
			continue
		}
		if !out[idx].HasURL() {
			out[idx] = out[idx].WithURL(b.URL())
			recovered++
		}
	}
	return out, recovered
}
