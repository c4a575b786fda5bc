package ask

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/school-assistant/internal/app"
	"github.com/dtnitsch/school-assistant/pkg/chatbot"
)

// AskAction answers a single question given as arguments.
func AskAction(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return cli.Exit("usage: schoolbot ask <question>", 1)
	}

	a, err := app.Bootstrap(c.Context, c)
	if err != nil {
		return err
	}
	defer a.Close()

	reply := a.Service.Answer(c.Context, question, c.String("session"))
	printReply(os.Stdout, reply, c.Bool("show-sources"))
	return nil
}

// ChatAction runs an interactive session on stdin. The auto-refresh
// scheduler runs in the background for as long as the session lasts.
func ChatAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Bootstrap(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := c.String("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	g, gctx := errgroup.WithContext(ctx)
	a.RunBackground(gctx, g)

	g.Go(func() error {
		defer stop()
		return chatLoop(gctx, a.Service, os.Stdin, os.Stdout, sessionID, a.Config.School.Name)
	})
	return g.Wait()
}

func chatLoop(ctx context.Context, svc *chatbot.Service, in io.Reader, out io.Writer, sessionID, school string) error {
	fmt.Fprintf(out, "Ask me anything about %s school. Type 'exit' to quit.\n\n", school)

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				if err := <-errs; err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				return nil
			}
			line = strings.TrimSpace(line)
			switch strings.ToLower(line) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}
			printReply(out, svc.Answer(ctx, line, sessionID), false)
		}
	}
}

func printReply(out io.Writer, r chatbot.Reply, showSources bool) {
	fmt.Fprintln(out, r.Text)
	if r.NeedsHuman {
		fmt.Fprintln(out, "\n(A member of staff can follow up: use 'schoolbot leads add' to leave your contact details.)")
	}
	if showSources {
		fmt.Fprintf(out, "\n[intent=%s language=%s]\n", r.Intent, r.Language)
		for i, s := range r.Sources {
			fmt.Fprintf(out, "  %d. %s (score %d) %s\n", i+1, s.Document.Title, s.Score, s.Document.SourceURL)
		}
	}
	fmt.Fprintln(out)
}
