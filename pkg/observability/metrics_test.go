package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNewCollector_InstancesAreIndependent(t *testing.T) {
	// Arrange
	first := NewCollector("alpha")
	second := NewCollector("beta")

	// Act
	first.SkillsCreated.Inc()

	// Assert: each collector carries its own namespace and registry
	require.NotSame(t, first, second)

	firstOut := scrape(t, first)
	assert.Contains(t, firstOut, "alpha_skills_created_total 1")

	secondOut := scrape(t, second)
	assert.True(t, strings.Contains(secondOut, "beta_skills_created_total 0"),
		"second collector must not see the first collector's increments")
}
