package main

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errKillSwitch = errors.New("persistent kill switch, stopping")

// aggregate moderation-log scope covering every moderated community
const aggregateLogScope = "mod"

// mod log actions surfaced in the status post
var reportableActions = map[string]bool{
	"banaccount":    true,
	"removecontent": true,
}

// killSwitch pauses the service while it holds no capabilities in its home
// community. Removing the service as a home moderator is the operator's way
// of stopping enforcement without touching the process. A persistent
// activation stops the process entirely.
func (s *Server) killSwitch(ctx context.Context) error {
	s.logger.Info("checking kill switch")
	const (
		pause   = 60 * time.Second
		retries = 60
	)
	for attempt := 0; attempt < retries; attempt++ {
		held, err := s.engine.Client.CommunityCapabilities(ctx, s.engine.Home, s.engine.Self)
		if err != nil {
			s.logger.Error("exception checking capabilities", "err", err)
		} else if !held.Empty() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Info("kill switch activated, sleeping")
		sleepCtx(ctx, pause)
	}
	return errKillSwitch
}

// updateStatus edits the pinned status post in the home community with the
// current time, the most recent action, and a table of the last day's
// enforcement actions.
func (s *Server) updateStatus(ctx context.Context) error {
	s.logger.Info("updating status")
	client := s.engine.Client

	if s.statusPostID == "" {
		query := fmt.Sprintf("title:%q", s.engine.Self+" status")
		results, err := client.SearchPosts(ctx, s.engine.Home, query)
		if err != nil {
			return err
		}
		for _, p := range results {
			if p.Author == s.engine.Self && p.SelfPost {
				s.statusPostID = p.ID
				break
			}
		}
		if s.statusPostID == "" {
			s.logger.Error("unable to locate status post")
			return nil
		}
	}

	entries, err := client.ModLog(ctx, aggregateLogScope, "", 500)
	if err != nil {
		s.logger.Error("unable to read mod log for status", "err", err)
		return nil
	}

	now := time.Now().UTC()
	var lastTime, lastType, recent string
	for _, e := range entries {
		if e.Actor != s.engine.Self {
			continue
		}
		if lastTime == "" {
			lastTime = e.CreatedAt.UTC().Format(time.RFC3339)
			lastType = e.Action
		}
		if now.Sub(e.CreatedAt) > 24*time.Hour {
			break
		}
		if reportableActions[e.Action] {
			recent += fmt.Sprintf("|%s|%s|/u/%s|\n", relativeTime(now, e.CreatedAt), e.Action, e.TargetAuthor)
		}
	}
	if recent != "" {
		recent = "|Time|Action|Account|\n|-|-|-|\n" + recent
	}

	body := fmt.Sprintf("|Attribute|Value|\n|-|-|\n|Current time|%s|\n|Last action time|%s|\n|Last action type|%s|\n\n&nbsp;\n&nbsp;\n\n%s",
		now.Format(time.RFC3339), lastTime, lastType, recent)
	if err := client.EditPost(ctx, s.statusPostID, body); err != nil {
		s.logger.Error("unable to update status", "err", err)
	}
	return nil
}

func relativeTime(now, when time.Time) string {
	delta := now.Sub(when)
	switch {
	case delta < time.Minute:
		return "just now"
	case delta < 2*time.Minute:
		return "a minute ago"
	case delta < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(delta.Minutes()))
	case delta < 2*time.Hour:
		return "an hour ago"
	default:
		return fmt.Sprintf("%d hours ago", int(delta.Hours()))
	}
}
