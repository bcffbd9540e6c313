package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
	"github.com/kalambet/taxdesk/internal/view"
)

var chatCmd = &cobra.Command{
	Use:   "chat <document-id>",
	Short: "Ask questions about a document",
	Long: `Open an interactive chat about a document. Each line is sent as a
question; the answer is printed below it.

Commands inside the chat:
  /note <text>  save a note on this document
  /quit         leave (Ctrl-D works too)`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		detail, err := view.LoadDocumentDetail(cmd.Context(), a.api.Documents, a.api.Chat, id)
		if err != nil {
			return err
		}
		return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), detail, view.NewNotes(a.api.Notes))
	}),
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, detail *view.DocumentDetail, notes *view.Notes) error {
	conv := detail.Conversation
	fmt.Fprintln(out, colorize(colorBold, detail.Document.Title))
	for _, m := range conv.Messages() {
		printMessage(out, m)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, colorize(colorCyan, "> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/note"):
			note, saved, err := notes.SaveForDocument(ctx, conv.DocumentID(), strings.TrimSpace(strings.TrimPrefix(line, "/note")))
			if err != nil {
				if errors.Is(err, transport.ErrSessionExpired) {
					return err
				}
				printError("%s", errorText(err))
				continue
			}
			if saved {
				printSuccess("Saved note #%d", note.ID)
			}
			continue
		}

		before := len(conv.Messages())
		err := conv.Ask(ctx, line)
		if errors.Is(err, transport.ErrSessionExpired) {
			return err
		}
		if err != nil {
			printError("%s", conv.Err())
			continue
		}
		msgs := conv.Messages()
		// The question is already on screen; print what came back.
		for _, m := range msgs[before+1:] {
			printMessage(out, m)
		}
	}
}

func printMessage(w io.Writer, m taxapi.ChatMessage) {
	switch m.Role {
	case taxapi.RoleAssistant:
		fmt.Fprint(w, renderMarkdown(m.Content))
	case taxapi.RoleSystem:
		fmt.Fprintln(w, colorize(colorDim, m.Content))
	default:
		fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "you:"), m.Content)
	}
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history <document-id>",
	Short: "Print the chat history of a document",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		history, err := a.api.Chat.History(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), history, func(w io.Writer) {
			if len(history) == 0 {
				fmt.Fprintln(w, "No questions asked yet.")
				return
			}
			for _, m := range history {
				printMessage(w, m)
			}
		})
	}),
}

var chatAskCmd = &cobra.Command{
	Use:   "ask <document-id> <question>",
	Short: "Ask one question about a document",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		conv := view.NewConversation(a.api.Chat, id, nil)
		if err := conv.Ask(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
			return err
		}
		msgs := conv.Messages()
		if len(msgs) < 2 {
			return nil
		}
		answer := msgs[len(msgs)-1]
		return render(cmd.OutOrStdout(), answer, func(w io.Writer) { printMessage(w, answer) })
	}),
}

func init() {
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatAskCmd)
}
