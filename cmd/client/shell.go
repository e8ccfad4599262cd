package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/civica/internal/client/api"
	"github.com/atinyakov/civica/internal/client/auth"
	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/client/optimistic"
	"github.com/atinyakov/civica/internal/models"
)

const helpText = `Available commands:
  login <email> <password>          sign in
  register <name> <email> <password> create an account
  logout                            sign out
  me                                show the signed-in profile
  level <beginner|intermediate|advanced|teacher>
  posts                             list forum threads
  post <id>                         show a thread and its replies
  up|down <post>                    vote on a thread (repeat to withdraw)
  replyup|replydown <post> <reply>  vote on a reply
  videos                            list short-form videos
  like <video>                      like or unlike a video
  news                              list news
  report <category> <title...> [@file ...]
  exit`

// shell is the interactive front end. Each command plays the part of a
// screen: it reads the session state and calls into the client core.
type shell struct {
	session *auth.Synchronizer
	api     *api.Client
	voter   *optimistic.Voter
	liker   *optimistic.Liker
	out     io.Writer
}

// run reads commands from in until EOF or exit. The first command waits for
// the startup session check to finish.
func (s *shell) run(ctx context.Context, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, s.prompt())
		if !scanner.Scan() {
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		select {
		case <-s.session.Done():
		default:
			fmt.Fprintln(s.out, "restoring session...")
			<-s.session.Done()
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		s.exec(ctx, args)
	}
}

func (s *shell) prompt() string {
	st := s.session.State()
	switch {
	case st.Loading:
		return "civica (loading)> "
	case st.Identity == nil:
		return "civica> "
	case st.Identity.IsAdmin():
		return fmt.Sprintf("civica [%s, admin]> ", st.Identity.Name)
	default:
		return fmt.Sprintf("civica [%s]> ", st.Identity.Name)
	}
}

func (s *shell) exec(ctx context.Context, args []string) {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		if len(args) != 3 {
			fmt.Fprintln(s.out, "Usage: login <email> <password>")
			return
		}
		s.report(s.session.Login(ctx, args[1], args[2]))
	case "register":
		if len(args) != 4 {
			fmt.Fprintln(s.out, "Usage: register <name> <email> <password>")
			return
		}
		s.report(s.session.Register(ctx, args[1], args[2], args[3]))
	case "logout":
		s.session.Logout()
	case "me":
		s.me()
	case "level":
		if len(args) != 2 || !models.LearningLevel(args[1]).Valid() {
			fmt.Fprintln(s.out, "Usage: level <beginner|intermediate|advanced|teacher>")
			return
		}
		if !s.requireLogin() {
			return
		}
		level := models.LearningLevel(args[1])
		s.report(s.session.UpdateProfile(ctx, models.ProfileUpdate{LearningLevel: &level}))
	case "posts":
		s.posts(ctx)
	case "post":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: post <id>")
			return
		}
		s.post(ctx, args[1])
	case "up", "down":
		if len(args) != 2 {
			fmt.Fprintf(s.out, "Usage: %s <post>\n", args[0])
			return
		}
		if st, err := s.voter.VotePost(ctx, args[1], models.VoteType(args[0])); err == nil {
			fmt.Fprintf(s.out, "score %d%s\n", st.VoteScore, voteMark(st.UserVote))
		}
	case "replyup", "replydown":
		if len(args) != 3 {
			fmt.Fprintf(s.out, "Usage: %s <post> <reply>\n", args[0])
			return
		}
		vote := models.VoteType(strings.TrimPrefix(args[0], "reply"))
		if st, err := s.voter.VoteReply(ctx, args[1], args[2], vote); err == nil {
			fmt.Fprintf(s.out, "score %d%s\n", st.VoteScore, voteMark(st.UserVote))
		}
	case "videos":
		s.videos(ctx)
	case "like":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: like <video>")
			return
		}
		if st, err := s.liker.Like(ctx, args[1]); err == nil {
			fmt.Fprintf(s.out, "%d likes%s\n", st.Likes, likeMark(st.Liked))
		}
	case "news":
		s.news(ctx)
	case "report":
		s.submitReport(ctx, args[1:])
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
}

// report prints err unless the user has already been told about it.
func (s *shell) report(err error) {
	if err == nil || gateway.Surfaced(err) || errors.Is(err, gateway.ErrUnauthorized) {
		return
	}
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		fmt.Fprintln(s.out, "❌", authErr.Message)
		return
	}
	fmt.Fprintln(s.out, "❌", err)
}

func (s *shell) requireLogin() bool {
	if s.session.IsAuthenticated() {
		return true
	}
	fmt.Fprintln(s.out, "Please log in first.")
	return false
}

func (s *shell) me() {
	id := s.session.State().Identity
	if id == nil {
		fmt.Fprintln(s.out, "Not logged in.")
		return
	}
	fmt.Fprintf(s.out, "%s <%s>\nrole: %s\nlevel: %s\nchats: %d, messages: %d, reports: %d\n",
		id.Name, id.Email, id.Role, id.LearningLevel,
		id.Stats.TotalChats, id.Stats.TotalMessages, id.Stats.ReportsSubmitted)
}

func (s *shell) posts(ctx context.Context) {
	list, err := s.api.Posts(ctx, api.ListParams{})
	if err != nil {
		s.report(err)
		return
	}
	if len(list.Posts) == 0 {
		fmt.Fprintln(s.out, "No posts yet.")
		return
	}
	for _, p := range list.Posts {
		s.voter.Posts().Put(p.ID, p.VoteState)
		fmt.Fprintf(s.out, "[%s] %s (score %d%s)\n", p.ID, p.Title, p.VoteScore, voteMark(p.UserVote))
	}
}

func (s *shell) post(ctx context.Context, id string) {
	detail, err := s.api.Post(ctx, id)
	if err != nil {
		s.report(err)
		return
	}
	s.voter.Posts().Put(detail.Post.ID, detail.Post.VoteState)
	fmt.Fprintf(s.out, "%s\n%s\n(score %d%s)\n", detail.Post.Title, detail.Post.Content,
		detail.Post.VoteScore, voteMark(detail.Post.UserVote))
	for _, r := range detail.Replies {
		s.voter.Replies().Put(r.ID, r.VoteState)
		fmt.Fprintf(s.out, "  [%s] %s: %s (score %d%s)\n", r.ID, r.Author.Name, r.Content, r.VoteScore, voteMark(r.UserVote))
	}
}

func (s *shell) videos(ctx context.Context) {
	list, err := s.api.ShortForms(ctx, api.ListParams{})
	if err != nil {
		s.report(err)
		return
	}
	for _, v := range list.Contents {
		s.liker.Contents().Put(v.ID, v.LikeState)
		fmt.Fprintf(s.out, "[%s] %s (%d likes%s)\n", v.ID, v.Title, v.Likes, likeMark(v.Liked))
	}
}

func (s *shell) news(ctx context.Context) {
	list, err := s.api.News(ctx, api.ListParams{})
	if err != nil {
		s.report(err)
		return
	}
	for _, a := range list.News {
		fmt.Fprintf(s.out, "[%s] %s\n", a.Slug, a.Title)
	}
}

// submitReport sends a report. Arguments starting with @ name files to attach.
func (s *shell) submitReport(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: report <category> <title...> [@file ...]")
		return
	}
	r := api.NewReport{Category: args[0]}
	var title []string
	for _, a := range args[1:] {
		path, ok := strings.CutPrefix(a, "@")
		if !ok {
			title = append(title, a)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintln(s.out, "❌", err)
			return
		}
		defer f.Close()
		r.Attachments = append(r.Attachments, api.Attachment{Filename: filepath.Base(path), Content: f})
	}
	r.Title = strings.Join(title, " ")
	r.Description = r.Title
	r.Anonymous = !s.session.IsAuthenticated()

	created, err := s.api.CreateReport(ctx, r)
	if err != nil {
		s.report(err)
		return
	}
	fmt.Fprintf(s.out, "Report %s submitted (%s)\n", created.ReportID, created.Status)
}

func voteMark(v models.VoteType) string {
	switch v {
	case models.VoteUp:
		return ", you voted up"
	case models.VoteDown:
		return ", you voted down"
	}
	return ""
}

func likeMark(liked bool) string {
	if liked {
		return ", you like this"
	}
	return ""
}
