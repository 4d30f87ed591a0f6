package cache

import "fmt"

// All keys live under the "quiz" namespace and follow the convention
// <namespace>:<resource-kind>:<discriminator...>, where discriminators are
// exactly the parameters that affect the cached content. Keys and
// invalidation patterns are defined here and nowhere else so namespaces
// cannot drift apart.
const namespace = "quiz"

// Scope distinguishes cached list views by visibility, since admins see
// unpublished quizzes that public callers must not.
type Scope string

const (
	ScopePublic Scope = "public"
	ScopeAdmin  Scope = "admin"
)

// QuizListKey builds the key for a paginated quiz list view.
func QuizListKey(scope Scope, page, pageSize int) string {
	return fmt.Sprintf("%s:list:%s:%d:%d", namespace, scope, page, pageSize)
}

// QuizDetailKey builds the key for a single quiz detail view.
func QuizDetailKey(quizID string) string {
	return fmt.Sprintf("%s:detail:%s", namespace, quizID)
}

// LeaderboardKey builds the key for a per-quiz leaderboard page.
func LeaderboardKey(quizID string, page, pageSize int) string {
	return fmt.Sprintf("%s:leaderboard:%s:%d:%d", namespace, quizID, page, pageSize)
}

// GlobalLeaderboardKey builds the key for a global leaderboard page.
func GlobalLeaderboardKey(page, pageSize int) string {
	return fmt.Sprintf("%s:leaderboard:global:%d:%d", namespace, page, pageSize)
}

// GenerationKey builds the key for an AI-generated quiz draft, keyed by the
// hash of the generation prompt.
func GenerationKey(promptHash string) string {
	return fmt.Sprintf("%s:generation:%s", namespace, promptHash)
}

// QuizListPattern matches every cached list page in every scope.
// Used after create/update/delete, which shift pagination for all pages.
func QuizListPattern() string {
	return namespace + ":list:*"
}

// QuizDetailPattern matches the cached detail view of one quiz.
func QuizDetailPattern(quizID string) string {
	return fmt.Sprintf("%s:detail:%s", namespace, quizID)
}

// LeaderboardPattern matches every cached leaderboard page of one quiz.
func LeaderboardPattern(quizID string) string {
	return fmt.Sprintf("%s:leaderboard:%s:*", namespace, quizID)
}

// GlobalLeaderboardPattern matches every cached global leaderboard page.
func GlobalLeaderboardPattern() string {
	return namespace + ":leaderboard:global:*"
}
