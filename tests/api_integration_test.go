package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

// These tests exercise the full stack (HTTP, Postgres, Redis, activity
// workers) against a running server. They register their own throwaway
// accounts, so no seed data is required. Point TEST_BASE_URL at the
// server; without one the suite skips.

var baseURL = getEnv("TEST_BASE_URL", "http://localhost:8080")

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type apiClient struct {
	client  *http.Client
	baseURL string
	token   string
}

func newClient() *apiClient {
	return &apiClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

func (c *apiClient) withToken(token string) *apiClient {
	c.token = token
	return c
}

func (c *apiClient) do(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

func (c *apiClient) get(path string) (*http.Response, error) {
	return c.do("GET", path, nil)
}

func (c *apiClient) post(path string, body interface{}) (*http.Response, error) {
	return c.do("POST", path, body)
}

func (c *apiClient) delete(path string) (*http.Response, error) {
	return c.do("DELETE", path, nil)
}

func parseJSON(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

func requireServer(t *testing.T) {
	t.Helper()
	resp, err := newClient().get("/health")
	if err != nil {
		t.Skipf("No server at %s, skipping integration tests: %v", baseURL, err)
	}
	resp.Body.Close()
}

type account struct {
	ID    int64
	Email string
	Token string
}

// registerAccount creates a fresh account with a random email and returns
// its id and access token.
func registerAccount(t *testing.T, displayName string) account {
	t.Helper()

	email := fmt.Sprintf("it-%d-%d@example.com", time.Now().UnixNano(), rand.Intn(10000))
	resp, err := newClient().post("/auth/register", map[string]string{
		"email":        email,
		"password":     "password123",
		"display_name": displayName,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Register failed with status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	if err := parseJSON(resp, &result); err != nil {
		t.Fatalf("Parse register response: %v", err)
	}
	return account{ID: result.User.ID, Email: email, Token: result.AccessToken}
}

func createProject(t *testing.T, owner account, title string, visible bool) int64 {
	t.Helper()

	resp, err := newClient().withToken(owner.Token).post("/projects", map[string]interface{}{
		"title":       title,
		"description": "integration test project",
		"category":    "web",
		"visible":     visible,
	})
	if err != nil {
		t.Fatalf("Create project: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Create project failed: %d - %s", resp.StatusCode, body)
	}

	var project struct {
		ID int64 `json:"id"`
	}
	if err := parseJSON(resp, &project); err != nil {
		t.Fatalf("Parse project: %v", err)
	}
	return project.ID
}

func TestEngagementCounters(t *testing.T) {
	requireServer(t)

	owner := registerAccount(t, "Counter Owner")
	fan := registerAccount(t, "Counter Fan")
	projectID := createProject(t, owner, "Counter project", true)
	fanClient := newClient().withToken(fan.Token)

	resp, err := fanClient.post(fmt.Sprintf("/projects/%d/like", projectID), nil)
	if err != nil {
		t.Fatalf("Like: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Like failed: %d - %s", resp.StatusCode, body)
	}
	resp.Body.Close()

	// Second like from the same user must conflict, not double count
	resp, err = fanClient.post(fmt.Sprintf("/projects/%d/like", projectID), nil)
	if err != nil {
		t.Fatalf("Second like: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Second like: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if resp, err = fanClient.post(fmt.Sprintf("/projects/%d/save", projectID), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	resp.Body.Close()

	if resp, err = fanClient.post(fmt.Sprintf("/projects/%d/comments", projectID), map[string]string{
		"content": "nice work",
	}); err != nil {
		t.Fatalf("Comment: %v", err)
	}
	resp.Body.Close()

	resp, err = newClient().get(fmt.Sprintf("/projects/%d", projectID))
	if err != nil {
		t.Fatalf("Get project: %v", err)
	}
	var project struct {
		Likes         int     `json:"likes"`
		Saves         int     `json:"saves"`
		CommentsCount int     `json:"comments_count"`
		LikedBy       []int64 `json:"liked_by"`
	}
	if err := parseJSON(resp, &project); err != nil {
		t.Fatalf("Parse project: %v", err)
	}

	if project.Likes != 1 {
		t.Errorf("Expected 1 like, got %d", project.Likes)
	}
	if project.Saves != 1 {
		t.Errorf("Expected 1 save, got %d", project.Saves)
	}
	if project.CommentsCount != 1 {
		t.Errorf("Expected 1 comment, got %d", project.CommentsCount)
	}
	liked := false
	for _, id := range project.LikedBy {
		if id == fan.ID {
			liked = true
		}
	}
	if !liked {
		t.Errorf("Expected liked_by to contain user %d", fan.ID)
	}

	// Unlike drops the counter back
	if resp, err = fanClient.delete(fmt.Sprintf("/projects/%d/like", projectID)); err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	resp.Body.Close()

	resp, _ = newClient().get(fmt.Sprintf("/projects/%d", projectID))
	if err := parseJSON(resp, &project); err != nil {
		t.Fatalf("Parse project after unlike: %v", err)
	}
	if project.Likes != 0 {
		t.Errorf("Expected 0 likes after unlike, got %d", project.Likes)
	}
}

func TestHiddenProjectVisibility(t *testing.T) {
	requireServer(t)

	owner := registerAccount(t, "Hidden Owner")
	stranger := registerAccount(t, "Hidden Stranger")
	projectID := createProject(t, owner, "Hidden project", false)

	// Anonymous and stranger get 404, the owner sees the project
	resp, err := newClient().get(fmt.Sprintf("/projects/%d", projectID))
	if err != nil {
		t.Fatalf("Get project anonymously: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Anonymous: expected 404, got %d", resp.StatusCode)
	}

	resp, err = newClient().withToken(stranger.Token).get(fmt.Sprintf("/projects/%d", projectID))
	if err != nil {
		t.Fatalf("Get project as stranger: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Stranger: expected 404, got %d", resp.StatusCode)
	}

	resp, err = newClient().withToken(owner.Token).get(fmt.Sprintf("/projects/%d", projectID))
	if err != nil {
		t.Fatalf("Get project as owner: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Owner: expected 200, got %d", resp.StatusCode)
	}
}

func TestCommentsSurviveProjectDeletion(t *testing.T) {
	requireServer(t)

	owner := registerAccount(t, "Deleter")
	commenter := registerAccount(t, "Commenter")
	projectID := createProject(t, owner, "Doomed project", true)

	resp, err := newClient().withToken(commenter.Token).post(fmt.Sprintf("/projects/%d/comments", projectID), map[string]string{
		"content": "posthumous comment",
	})
	if err != nil {
		t.Fatalf("Comment: %v", err)
	}
	resp.Body.Close()

	resp, err = newClient().withToken(owner.Token).delete(fmt.Sprintf("/projects/%d", projectID))
	if err != nil {
		t.Fatalf("Delete project: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Delete project: expected 200, got %d", resp.StatusCode)
	}

	resp, err = newClient().get(fmt.Sprintf("/projects/%d/comments", projectID))
	if err != nil {
		t.Fatalf("List comments: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("List comments after deletion: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Comments []struct {
			Content string `json:"content"`
		} `json:"comments"`
	}
	if err := parseJSON(resp, &result); err != nil {
		t.Fatalf("Parse comments: %v", err)
	}
	if len(result.Comments) != 1 || result.Comments[0].Content != "posthumous comment" {
		t.Errorf("Expected the comment to survive project deletion, got %+v", result.Comments)
	}
}

func TestFollowAndFeed(t *testing.T) {
	requireServer(t)

	author := registerAccount(t, "Feed Author")
	reader := registerAccount(t, "Feed Reader")
	createProject(t, author, "Feed project", true)
	createProject(t, author, "Feed hidden project", false)

	readerClient := newClient().withToken(reader.Token)

	// Empty feed before following anyone
	resp, err := readerClient.get("/feed")
	if err != nil {
		t.Fatalf("Get feed: %v", err)
	}
	var feed struct {
		Projects []struct {
			Title string `json:"title"`
		} `json:"projects"`
	}
	if err := parseJSON(resp, &feed); err != nil {
		t.Fatalf("Parse feed: %v", err)
	}
	if len(feed.Projects) != 0 {
		t.Errorf("Expected empty feed, got %d projects", len(feed.Projects))
	}

	resp, err = readerClient.post(fmt.Sprintf("/users/%d/follow", author.ID), nil)
	if err != nil {
		t.Fatalf("Follow: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Follow: expected 201, got %d", resp.StatusCode)
	}

	// Self-follow is rejected
	resp, err = readerClient.post(fmt.Sprintf("/users/%d/follow", reader.ID), nil)
	if err != nil {
		t.Fatalf("Self-follow: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Self-follow: expected 400, got %d", resp.StatusCode)
	}

	resp, err = readerClient.get("/feed")
	if err != nil {
		t.Fatalf("Get feed after follow: %v", err)
	}
	if err := parseJSON(resp, &feed); err != nil {
		t.Fatalf("Parse feed: %v", err)
	}
	if len(feed.Projects) != 1 {
		t.Fatalf("Expected 1 visible project in feed, got %d", len(feed.Projects))
	}
	if feed.Projects[0].Title != "Feed project" {
		t.Errorf("Expected visible project in feed, got %q", feed.Projects[0].Title)
	}

	// Follower counters on both profiles
	resp, err = newClient().get(fmt.Sprintf("/users/%d", author.ID))
	if err != nil {
		t.Fatalf("Get author profile: %v", err)
	}
	var profile struct {
		User struct {
			FollowerCount int `json:"follower_count"`
		} `json:"user"`
	}
	if err := parseJSON(resp, &profile); err != nil {
		t.Fatalf("Parse profile: %v", err)
	}
	if profile.User.FollowerCount != 1 {
		t.Errorf("Expected follower_count 1, got %d", profile.User.FollowerCount)
	}
}

func TestGroupLifecycle(t *testing.T) {
	requireServer(t)

	creator := registerAccount(t, "Group Creator")
	member := registerAccount(t, "Group Member")
	creatorClient := newClient().withToken(creator.Token)
	memberClient := newClient().withToken(member.Token)

	name := fmt.Sprintf("It Group %d", time.Now().UnixNano())
	resp, err := creatorClient.post("/groups", map[string]string{
		"name":        name,
		"description": "integration test group",
	})
	if err != nil {
		t.Fatalf("Create group: %v", err)
	}
	var group struct {
		ID      string  `json:"id"`
		Members []int64 `json:"members"`
	}
	if err := parseJSON(resp, &group); err != nil {
		t.Fatalf("Parse group: %v", err)
	}
	if group.ID == "" {
		t.Fatal("Expected slug group id")
	}

	// Join twice: both succeed, membership stays single
	for i := 0; i < 2; i++ {
		resp, err = memberClient.post("/groups/"+group.ID+"/join", nil)
		if err != nil {
			t.Fatalf("Join %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Join %d: expected 200, got %d", i, resp.StatusCode)
		}
	}

	resp, err = newClient().get("/groups/" + group.ID)
	if err != nil {
		t.Fatalf("Get group: %v", err)
	}
	if err := parseJSON(resp, &group); err != nil {
		t.Fatalf("Parse group: %v", err)
	}
	memberCount := 0
	for _, id := range group.Members {
		if id == member.ID {
			memberCount++
		}
	}
	if memberCount != 1 {
		t.Errorf("Expected member to appear once, got %d", memberCount)
	}

	// Discussion thread with a reply
	resp, err = memberClient.post("/groups/"+group.ID+"/discussions", map[string]string{
		"title":   "First thread",
		"content": "opening post",
	})
	if err != nil {
		t.Fatalf("Create discussion: %v", err)
	}
	var discussion struct {
		ID int64 `json:"id"`
	}
	if err := parseJSON(resp, &discussion); err != nil {
		t.Fatalf("Parse discussion: %v", err)
	}

	resp, err = creatorClient.post(fmt.Sprintf("/groups/%s/discussions/%d/comments", group.ID, discussion.ID), map[string]string{
		"content": "welcome",
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Reply: expected 201, got %d", resp.StatusCode)
	}
}

func TestRankingAndActivity(t *testing.T) {
	requireServer(t)

	author := registerAccount(t, "Ranked Author")
	fan := registerAccount(t, "Ranked Fan")
	projectID := createProject(t, author, "Ranked project", true)
	fanClient := newClient().withToken(fan.Token)

	if resp, err := fanClient.post(fmt.Sprintf("/projects/%d/like", projectID), nil); err == nil {
		resp.Body.Close()
	}
	if resp, err := fanClient.post(fmt.Sprintf("/users/%d/follow", author.ID), nil); err == nil {
		resp.Body.Close()
	}

	// The leaderboard snapshot may be cached for a few minutes, so only
	// assert shape and ordering, not this author's fresh score.
	resp, err := newClient().get("/ranking")
	if err != nil {
		t.Fatalf("Get ranking: %v", err)
	}
	var ranking struct {
		Ranking []struct {
			Reputation int `json:"reputation"`
		} `json:"ranking"`
	}
	if err := parseJSON(resp, &ranking); err != nil {
		t.Fatalf("Parse ranking: %v", err)
	}
	for i := 1; i < len(ranking.Ranking); i++ {
		if ranking.Ranking[i].Reputation > ranking.Ranking[i-1].Reputation {
			t.Errorf("Ranking not sorted at index %d", i)
		}
	}

	// Activity log is written by async workers
	time.Sleep(time.Second)

	resp, err = newClient().get(fmt.Sprintf("/users/%d/activity", fan.ID))
	if err != nil {
		t.Fatalf("Get activity: %v", err)
	}
	var activity struct {
		Actions []struct {
			ActionType  string `json:"action_type"`
			Description string `json:"description"`
		} `json:"actions"`
	}
	if err := parseJSON(resp, &activity); err != nil {
		t.Fatalf("Parse activity: %v", err)
	}

	types := map[string]bool{}
	for _, a := range activity.Actions {
		types[a.ActionType] = true
	}
	if !types["liked_project"] || !types["followed_user"] {
		t.Errorf("Expected like_project and follow_user actions, got %+v", activity.Actions)
	}
}
