package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/devansh054/dev-pulse-sub000/internal/domain"
)

// RebelRanking is one row of the team leaderboard.
type RebelRanking struct {
	Rank       int     `json:"rank"`
	Login      string  `json:"login"`
	Name       string  `json:"name"`
	AvatarURL  string  `json:"avatar_url"`
	Points     float64 `json:"points"`
	Title      string  `json:"title"`
	Percentile float64 `json:"percentile"`
}

// Points weights contributions: commits 1, PRs 3, reviews 2, closed issues 1.5.
func Points(m domain.TeamMemberProfile) float64 {
	return float64(m.Commits) + 3*float64(m.PullRequests) + 2*float64(m.Reviews) + 1.5*float64(m.IssuesClosed)
}

// TransformToRebelRanking orders members by points (ties by login) and assigns titles by percentile.
// An empty input yields an empty, non-nil slice.
func TransformToRebelRanking(members []domain.TeamMemberProfile) []RebelRanking {
	out := make([]RebelRanking, 0, len(members))
	for _, m := range members {
		out = append(out, RebelRanking{
			Login:     m.Login,
			Name:      m.Name,
			AvatarURL: m.AvatarURL,
			Points:    Points(m),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return strings.ToLower(out[i].Login) < strings.ToLower(out[j].Login)
	})

	n := float64(len(out))
	for i := range out {
		out[i].Rank = i + 1
		out[i].Percentile = math.Round(float64(i+1)/n*1000) / 1000
		out[i].Title = rebelTitle(i+1, out[i].Percentile)
	}
	return out
}

func rebelTitle(rank int, percentile float64) string {
	switch {
	case rank == 1:
		return "Rebel Leader"
	case percentile <= 0.25:
		return "Code Rebel"
	case percentile <= 0.5:
		return "Merge Maverick"
	case percentile <= 0.75:
		return "Commit Cadet"
	default:
		return "Rising Recruit"
	}
}
