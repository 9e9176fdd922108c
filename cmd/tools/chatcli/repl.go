package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mindfulai/mindful-shell/internal/model/chat"
	"github.com/mindfulai/mindful-shell/internal/model/profile"
	"github.com/mindfulai/mindful-shell/internal/model/resource"
	chatService "github.com/mindfulai/mindful-shell/internal/service/chat"
)

const botLabel = "MindfulAI"

type repl struct {
	svc *chatService.Service
	in  io.Reader
	out io.Writer
}

func newREPL(svc *chatService.Service, in io.Reader, out io.Writer) *repl {
	return &repl{svc: svc, in: in, out: out}
}

// run drives one session until /quit, end of input, or ctx is done.
func (r *repl) run(ctx context.Context) error {
	snap, err := r.svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.svc.EndSession(context.Background(), snap.ID) }()

	for _, msg := range snap.Messages {
		r.printMessage(msg)
	}

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			fmt.Fprintln(r.out, "Take care.")
			return nil
		case "/resources":
			set, err := r.svc.OpenResources(ctx, snap.ID)
			if err != nil {
				return err
			}
			r.printResources(set)
		case "/profile":
			p, err := r.svc.Profile(ctx, snap.ID)
			if err != nil {
				return err
			}
			r.printProfile(p)
		case "/followup":
			p, err := r.svc.ScheduleFollowUp(ctx, snap.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "Follow-up scheduled for %s\n", p.NextFollowUp)
		default:
			turn, err := r.svc.SendMessage(ctx, snap.ID, line)
			if err != nil {
				return err
			}
			if turn == nil {
				continue
			}
			r.printMessage(turn.Bot)
		}
	}
}

func (r *repl) printMessage(msg chat.Message) {
	if msg.Sender == chat.SenderBot {
		fmt.Fprintf(r.out, "%s: %s\n", botLabel, msg.Content)
		return
	}
	fmt.Fprintf(r.out, "You: %s\n", msg.Content)
}

func (r *repl) printResources(set resource.Set) {
	sections := []struct {
		title string
		links []resource.Link
	}{
		{"Crisis Support", set.Crisis},
		{"Self-Help Resources", set.SelfHelp},
		{"Professional Help", set.Professional},
	}
	for _, section := range sections {
		fmt.Fprintln(r.out, section.title)
		for _, l := range section.links {
			fmt.Fprintf(r.out, "  - %s (%s)\n", l.Name, l.Link)
		}
	}
}

func (r *repl) printProfile(p profile.Profile) {
	fmt.Fprintf(r.out, "Name: %s\nFeeling today: %s\nSleep quality: %s\nStress level: %s\nLast check-in: %s\nNext follow-up: %s\n",
		p.Name, p.FeelingToday, p.SleepQuality, p.StressLevel, p.LastCheckIn, p.NextFollowUp)
}
