package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository/sqlite"
	"github.com/sakif/mentor-directory/internal/search"
	"github.com/sakif/mentor-directory/internal/service"
)

type fixture struct {
	server  *Server
	mentors map[string]*model.Mentor // by first name
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	seed := []struct {
		first, last, major string
	}{
		{"Ada", "Lovelace", "Computer Science"},
		{"Milton", "Friedman", "Economics"},
		{"Grace", "Hopper", "Mathematics"},
	}
	f := &fixture{mentors: map[string]*model.Mentor{}}
	for _, s := range seed {
		a := &model.Account{Email: s.first + "@g.ucla.edu", FirstName: s.first, LastName: s.last}
		p := &model.Profile{}
		require.NoError(t, db.CreateAccount(ctx, a, p))
		m, err := db.CreateOrActivateMentor(ctx, p.ID)
		require.NoError(t, err)
		m, err = db.UpdateMentor(ctx, model.MentorUpdate{
			MentorID: m.ID,
			Related:  map[model.RelatedKind][]string{model.KindMajor: {s.major}},
		})
		require.NoError(t, err)
		f.mentors[s.first] = m
	}

	svc := service.NewMentorService(db, db, db, search.NewEngine(search.DefaultAliases(), nil), 0, 0, logger)
	f.server = NewServer(svc, logger)
	return f
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestSearchMentors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("alias on major", func(t *testing.T) {
		res, err := f.server.handleSearchMentors(ctx, callRequest("search_mentors", map[string]interface{}{
			"query": "econ",
			"major": true,
		}))
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var page search.Page
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &page))
		require.Equal(t, 1, page.Count)
		assert.Equal(t, f.mentors["Milton"].ID, page.Results[0].ID)
	})

	t.Run("empty query lists everyone", func(t *testing.T) {
		res, err := f.server.handleSearchMentors(ctx, callRequest("search_mentors", nil))
		require.NoError(t, err)

		var page search.Page
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &page))
		assert.Equal(t, 3, page.Count)
	})

	t.Run("random sample and limit", func(t *testing.T) {
		res, err := f.server.handleSearchMentors(ctx, callRequest("search_mentors", map[string]interface{}{
			"random": float64(2),
		}))
		require.NoError(t, err)
		var page search.Page
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &page))
		assert.Equal(t, 2, page.Count)

		res, err = f.server.handleSearchMentors(ctx, callRequest("search_mentors", map[string]interface{}{
			"limit": float64(1),
		}))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &page))
		assert.Equal(t, 3, page.Count)
		assert.Len(t, page.Results, 1)
	})
}

func TestGetMentor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.server.handleGetMentor(ctx, callRequest("get_mentor", map[string]interface{}{
		"id": f.mentors["Grace"].ID,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var m model.Mentor
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &m))
	assert.Equal(t, "Hopper", m.Profile.LastName)
	require.Len(t, m.Majors, 1)
	assert.Equal(t, "Mathematics", m.Majors[0].Name)

	res, err = f.server.handleGetMentor(ctx, callRequest("get_mentor", map[string]interface{}{"id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = f.server.handleGetMentor(ctx, callRequest("get_mentor", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]interface{}{
		"f": float64(3), "i": 4, "s": "5", "bad": "x",
		"b": true, "bs": "true", "bn": "no",
	}
	assert.Equal(t, 3, getInt(args, "f"))
	assert.Equal(t, 4, getInt(args, "i"))
	assert.Equal(t, 5, getInt(args, "s"))
	assert.Equal(t, 0, getInt(args, "bad"))
	assert.Equal(t, 0, getInt(args, "missing"))
	assert.True(t, getBool(args, "b"))
	assert.True(t, getBool(args, "bs"))
	assert.False(t, getBool(args, "bn"))
	assert.False(t, getBool(args, "missing"))
}
