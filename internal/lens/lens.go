package lens

import (
	"fmt"
	"strings"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

// LENS layers independent corroborating signals on top of a neutral base
// score. Every adjustment carries a human-readable reason so the end user
// can see why a finding was trusted or doubted.

const (
	baseScore = 50

	maxReasons = 3

	highConfidenceFloor     = 80
	moderateConfidenceFloor = 60
)

// Platforms with strict handle policies rarely produce false positives;
// the denylist covers sites whose lookup endpoints match far too eagerly.
var reliablePlatforms = map[string]bool{
	"github":        true,
	"gitlab":        true,
	"linkedin":      true,
	"stackoverflow": true,
	"keybase":       true,
	"bitbucket":     true,
	"medium":        true,
	"reddit":        true,
}

var unreliablePlatforms = map[string]bool{
	"pinterest": true,
	"gravatar":  true,
	"about.me":  true,
	"flickr":    true,
	"snapchat":  true,
	"tiktok":    true,
}

// Kinds that imply a presence result when the status field is absent.
var foundKinds = map[string]bool{
	"profile_presence": true,
	"presence.hit":     true,
	"account_found":    true,
}

var notFoundKinds = map[string]bool{
	"presence.miss": true,
	"not_found":     true,
}

// DeriveStatus resolves a finding's presence signal into the closed status
// set. Providers report it in several shapes; this is the only place that
// inspects them, in priority order: explicit field, kind tag, meta.status,
// meta.exists.
func DeriveStatus(f model.Finding) model.FindingStatus {
	switch f.Status {
	case model.FindingFound, model.FindingClaimed, model.FindingNotFound, model.FindingUnknown:
		return f.Status
	}

	if foundKinds[f.Kind] {
		return model.FindingFound
	}
	if notFoundKinds[f.Kind] {
		return model.FindingNotFound
	}

	if raw, ok := f.Meta["status"].(string); ok {
		switch model.FindingStatus(raw) {
		case model.FindingFound, model.FindingClaimed, model.FindingNotFound, model.FindingUnknown:
			return model.FindingStatus(raw)
		}
	}

	if exists, ok := f.Meta["exists"].(bool); ok {
		if exists {
			return model.FindingFound
		}
		return model.FindingNotFound
	}

	return model.FindingUnknown
}

type scorer struct {
	score   int
	reasons []string
}

func (s *scorer) adjust(delta int, reason string) {
	s.score += delta
	s.reasons = append(s.reasons, reason)
}

func hasAnyMetaKey(meta map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		if v, ok := meta[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// ScoreFinding computes the confidence score for one finding. Pure and
// deterministic given the finding.
func ScoreFinding(f model.Finding) model.LensScore {
	s := &scorer{score: baseScore}

	switch DeriveStatus(f) {
	case model.FindingFound:
		s.adjust(25, "provider confirmed the profile exists")
	case model.FindingClaimed:
		s.adjust(15, "provider reports the handle as claimed")
	case model.FindingNotFound:
		s.adjust(5, "provider explicitly reports no match")
	}

	if f.URL != "" {
		s.adjust(10, "direct profile URL provided")
		if strings.HasPrefix(strings.ToLower(f.URL), "https://") {
			s.adjust(5, "profile link served over HTTPS")
		}
	} else {
		s.adjust(-10, "no direct URL evidence")
	}

	site := strings.ToLower(f.Site)
	if reliablePlatforms[site] {
		s.adjust(10, fmt.Sprintf("%s rarely produces false positives", f.Site))
	} else if unreliablePlatforms[site] {
		s.adjust(-10, fmt.Sprintf("%s is prone to false positives", f.Site))
	}

	if hasAnyMetaKey(f.Meta, "avatar", "image", "profile_image", "picture") {
		s.adjust(5, "profile image present")
	}
	if hasAnyMetaKey(f.Meta, "bio", "description", "about") {
		s.adjust(5, "profile bio present")
	}
	if hasAnyMetaKey(f.Meta, "followers", "follower_count", "connections", "connection_count") {
		s.adjust(5, "follower or connection counts present")
	}

	switch f.Kind {
	case "web_index.hit":
		s.adjust(12, "cross-verified by an independent web index")
	case "web_index.result":
		s.adjust(5, "appears in web index results")
	}

	if s.score > 100 {
		s.score = 100
	}
	if s.score < 0 {
		s.score = 0
	}

	reasons := s.reasons
	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}

	return model.LensScore{
		Score:     s.score,
		Reasons:   reasons,
		Reasoning: joinReasons(reasons),
	}
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "No scoring signals available."
	}
	return strings.Join(reasons, "; ") + "."
}

// Analyze scores every finding and rolls the results into one analysis.
// Recomputed on demand and never persisted: it is a pure function of the
// current finding set.
func Analyze(findings []model.Finding) model.LensAnalysis {
	analysis := model.LensAnalysis{
		Scores: make(map[string]model.LensScore, len(findings)),
	}

	var total int
	for i, f := range findings {
		score := ScoreFinding(f)

		key := f.ID
		if key == "" {
			key = fmt.Sprintf("finding-%d", i)
		}
		analysis.Scores[key] = score

		total += score.Score
		switch {
		case score.Score >= highConfidenceFloor:
			analysis.HighConfidence++
		case score.Score >= moderateConfidenceFloor:
			analysis.ModerateConfidence++
		default:
			analysis.LowConfidence++
		}
	}

	if len(findings) > 0 {
		analysis.OverallScore = float64(total) / float64(len(findings))
	}
	return analysis
}
