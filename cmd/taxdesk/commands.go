package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kalambet/taxdesk/internal/config"
	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
	"github.com/kalambet/taxdesk/internal/view"
)

// withApp opens the client stack for the duration of one command.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: want a positive number", s)
	}
	return id, nil
}

func formatTime(t taxapi.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// --- auth ---

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in, log out and inspect the session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		// A 401 here means bad credentials, not an expired session.
		a.nav.current = transport.LoginPath
		auth := view.NewAuth(a.api.Auth, a.tokens)
		if err := auth.Login(cmd.Context(), email, password); err != nil {
			return err
		}
		printSuccess("Logged in as %s", email)
		return nil
	}),
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		a.nav.current = transport.LoginPath
		auth := view.NewAuth(a.api.Auth, a.tokens)
		user, err := auth.Register(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), user, func(w io.Writer) {
			printSuccess("Registered %s (id %d). Run `taxdesk auth login` to sign in.", user.Email, user.ID)
		})
	}),
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := view.NewAuth(a.api.Auth, a.tokens).Logout(); err != nil {
			return err
		}
		printSuccess("Logged out")
		return nil
	}),
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session is stored and when it expires",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		auth := view.NewAuth(a.api.Auth, a.tokens)
		w := cmd.OutOrStdout()

		info, err := auth.Session()
		if errors.Is(err, view.ErrNotLoggedIn) {
			return err
		}

		status := struct {
			LoggedIn  bool       `json:"logged_in"`
			Subject   string     `json:"subject,omitempty"`
			ExpiresAt *time.Time `json:"expires_at,omitempty"`
			Expired   bool       `json:"expired"`
			API       string     `json:"api"`
		}{LoggedIn: true, API: a.cfg.API.BaseURL}
		if err == nil {
			status.Subject = info.Subject
			if !info.ExpiresAt.IsZero() {
				status.ExpiresAt = &info.ExpiresAt
			}
			status.Expired = info.Expired(time.Now())
		}

		return render(w, status, func(w io.Writer) {
			printStatus(w, "API", "%s", status.API)
			printStatus(w, "Logged in", "%s", colorize(colorGreen, "yes"))
			if err != nil {
				printStatus(w, "Token", "%s", colorize(colorDim, "opaque"))
				return
			}
			if status.Subject != "" {
				printStatus(w, "User", "%s", status.Subject)
			}
			if status.ExpiresAt != nil {
				exp := status.ExpiresAt.Local().Format(time.RFC1123)
				if status.Expired {
					exp = colorize(colorRed, exp+" (expired)")
				}
				printStatus(w, "Expires", "%s", exp)
			}
		})
	}),
}

// readPassword takes --password, else prompts on a terminal, else reads one
// line from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	for _, c := range []*cobra.Command{authLoginCmd, authRegisterCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password", "", "account password (prompted when omitted)")
		c.MarkFlagRequired("email")
	}
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}

// --- documents ---

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage uploaded tax documents",
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		docs := view.NewDocuments(a.api.Documents)
		if err := docs.Load(cmd.Context()); err != nil {
			return err
		}
		items := docs.Items()
		return render(cmd.OutOrStdout(), items, func(w io.Writer) {
			if len(items) == 0 {
				fmt.Fprintln(w, "No documents yet. Upload one with `taxdesk documents upload`.")
				return
			}
			for _, d := range items {
				fmt.Fprintf(w, "%s  %s  %s\n",
					colorize(colorBold, fmt.Sprintf("#%d", d.ID)),
					d.Title,
					colorize(colorDim, fmt.Sprintf("(%s, %s, %s)", d.FileType, formatSize(d.FileSize), formatTime(d.CreatedAt))),
				)
			}
		})
	}),
}

var documentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		doc, err := a.api.Documents.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), doc, func(w io.Writer) { printDocument(w, doc) })
	}),
}

func printDocument(w io.Writer, d taxapi.Document) {
	printStatus(w, "ID", "%d", d.ID)
	printStatus(w, "Title", "%s", d.Title)
	if d.Description != "" {
		printStatus(w, "Description", "%s", d.Description)
	}
	printStatus(w, "Type", "%s", d.FileType)
	printStatus(w, "Size", "%s", formatSize(d.FileSize))
	printStatus(w, "Uploaded", "%s", formatTime(d.CreatedAt))
}

var documentsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a PDF or TXT document",
	Long: `Upload a PDF or TXT document (at most 10MB).

Examples:
  taxdesk documents upload ./cit-8.pdf --title "CIT-8 2024"
  taxdesk documents upload ./notes.txt --title "Audit notes" --description "Q3 review"`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening file: %w", err)
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		form := view.UploadForm{
			Title:       title,
			Description: description,
			File:        &view.UploadFile{Name: st.Name(), Size: st.Size(), Content: f},
		}
		printStep("Uploading %s (%s)", st.Name(), formatSize(st.Size()))
		doc, err := view.NewDocuments(a.api.Documents).Upload(cmd.Context(), form)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), doc, func(w io.Writer) {
			printSuccess("Uploaded %q as document #%d", doc.Title, doc.ID)
		})
	}),
}

var documentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a document's title or description",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		current, err := a.api.Documents.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		title, description := current.Title, current.Description
		if cmd.Flags().Changed("title") {
			title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			description, _ = cmd.Flags().GetString("description")
		}

		doc, err := view.NewDocuments(a.api.Documents).Rename(cmd.Context(), id, title, description)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), doc, func(w io.Writer) {
			printSuccess("Updated document #%d", doc.ID)
		})
	}),
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its chat",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := view.NewDocuments(a.api.Documents).Delete(cmd.Context(), id); err != nil {
			return err
		}
		printSuccess("Deleted document #%d", id)
		return nil
	}),
}

func init() {
	documentsUploadCmd.Flags().String("title", "", "document title")
	documentsUploadCmd.Flags().String("description", "", "optional description")
	documentsUpdateCmd.Flags().String("title", "", "new title")
	documentsUpdateCmd.Flags().String("description", "", "new description")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsUploadCmd)
	documentsCmd.AddCommand(documentsUpdateCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
}

// --- news ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Read tax news",
}

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tax news",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		category, _ := cmd.Flags().GetString("category")

		items, err := view.LoadNewsList(cmd.Context(), a.api.News)
		if err != nil {
			return err
		}
		if category != "" {
			filtered := items[:0]
			for _, n := range items {
				if strings.EqualFold(string(n.Category), category) {
					filtered = append(filtered, n)
				}
			}
			items = filtered
		}
		return render(cmd.OutOrStdout(), items, func(w io.Writer) {
			for _, n := range items {
				fmt.Fprintf(w, "%s  %s  %s\n",
					colorize(colorBold, fmt.Sprintf("#%d", n.ID)),
					n.Title,
					colorize(colorDim, fmt.Sprintf("[%s] %s", n.Category, n.PublishedDate.Format("2006-01-02"))),
				)
				if n.Summary != "" {
					fmt.Fprintf(w, "    %s\n", truncate(n.Summary, 100))
				}
			}
		})
	}),
}

var newsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a news item with the insight for your company",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		nd, err := view.LoadNewsDetail(cmd.Context(), a.api.News, id)
		if err != nil {
			return err
		}

		out := struct {
			News    taxapi.News              `json:"news"`
			Insight *taxapi.PersonalizedNews `json:"insight,omitempty"`
		}{nd.News, nd.Insight}

		return render(cmd.OutOrStdout(), out, func(w io.Writer) {
			n := nd.News
			fmt.Fprintln(w, colorize(colorBold, n.Title))
			fmt.Fprintln(w, colorize(colorDim, fmt.Sprintf("%s · %s", n.Category, n.PublishedDate.Format("2006-01-02"))))
			if n.SourceURL != "" {
				fmt.Fprintln(w, colorize(colorDim, n.SourceURL))
			}
			fmt.Fprint(w, renderMarkdown(n.Content))
			switch {
			case nd.Insight != nil:
				fmt.Fprintln(w, colorize(colorCyan, "For your company:"))
				fmt.Fprint(w, renderMarkdown(nd.Insight.PersonalizedSummary))
			case transport.IsStatus(nd.InsightErr, 404):
				printWarning("No company profile yet. Run `taxdesk profile set` for a personalized insight.")
			case nd.InsightErr != nil:
				printWarning("Personalized insight unavailable: %s", transport.ErrorMessage(nd.InsightErr))
			}
		})
	}),
}

func init() {
	newsListCmd.Flags().String("category", "", "only this category (VAT, CIT, PIT, ...)")
	newsCmd.AddCommand(newsListCmd)
	newsCmd.AddCommand(newsShowCmd)
}

// --- notes ---

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Keep notes on documents and news",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally for one document or news item",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var f taxapi.NoteFilter
		f.DocumentID, _ = cmd.Flags().GetInt64("document")
		f.NewsID, _ = cmd.Flags().GetInt64("news")

		notes, err := view.NewNotes(a.api.Notes).List(cmd.Context(), f)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), notes, func(w io.Writer) {
			if len(notes) == 0 {
				fmt.Fprintln(w, "No notes.")
				return
			}
			for _, n := range notes {
				fmt.Fprintf(w, "%s  %s  %s\n",
					colorize(colorBold, fmt.Sprintf("#%d", n.ID)),
					truncate(n.Content, 80),
					colorize(colorDim, noteTarget(n)),
				)
			}
		})
	}),
}

func noteTarget(n taxapi.Note) string {
	switch {
	case n.DocumentID != nil:
		return fmt.Sprintf("(document #%d)", *n.DocumentID)
	case n.NewsID != nil:
		return fmt.Sprintf("(news #%d)", *n.NewsID)
	default:
		return ""
	}
}

var notesAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a note to a document or a news item",
	Long: `Add a note to a document or a news item.

Examples:
  taxdesk notes add --document 3 "Check the depreciation schedule"
  taxdesk notes add --news 12 "Ask the accountant about this"`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		docID, _ := cmd.Flags().GetInt64("document")
		newsID, _ := cmd.Flags().GetInt64("news")
		if (docID == 0) == (newsID == 0) {
			return fmt.Errorf("exactly one of --document or --news is required")
		}

		notes := view.NewNotes(a.api.Notes)
		var (
			note  taxapi.Note
			saved bool
			err   error
		)
		if docID != 0 {
			note, saved, err = notes.SaveForDocument(cmd.Context(), docID, args[0])
		} else {
			note, saved, err = notes.SaveForNews(cmd.Context(), newsID, args[0])
		}
		if err != nil {
			return err
		}
		if !saved {
			printWarning("Empty note not saved")
			return nil
		}
		return render(cmd.OutOrStdout(), note, func(w io.Writer) {
			printSuccess("Saved note #%d", note.ID)
		})
	}),
}

var notesEditCmd = &cobra.Command{
	Use:   "edit <id> <content>",
	Short: "Replace the content of a note",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		note, err := view.NewNotes(a.api.Notes).Edit(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), note, func(w io.Writer) {
			printSuccess("Updated note #%d", note.ID)
		})
	}),
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := view.NewNotes(a.api.Notes).Delete(cmd.Context(), id); err != nil {
			return err
		}
		printSuccess("Deleted note #%d", id)
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{notesListCmd, notesAddCmd} {
		c.Flags().Int64("document", 0, "document id")
		c.Flags().Int64("news", 0, "news id")
	}
	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesEditCmd)
	notesCmd.AddCommand(notesDeleteCmd)
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the company profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the company profile",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		editor := view.NewProfileEditor(a.api.Profile)
		exists, err := editor.Load(cmd.Context())
		if err != nil {
			return err
		}
		if !exists {
			printWarning("No company profile yet. Create one with `taxdesk profile set`.")
			return nil
		}
		p, _ := editor.Profile()
		return render(cmd.OutOrStdout(), p, func(w io.Writer) { printProfile(w, p) })
	}),
}

func printProfile(w io.Writer, p taxapi.CompanyProfile) {
	printStatus(w, "Name", "%s", p.Name)
	printStatus(w, "NIP", "%s", p.NIP)
	optional := []struct{ label, value string }{
		{"VAT ID", p.VATID},
		{"Industry", p.Industry},
		{"Company type", string(p.CompanyType)},
		{"PKD", p.PKDCode},
		{"Revenue range", string(p.RevenueRange)},
	}
	for _, o := range optional {
		if o.value != "" {
			printStatus(w, o.label, "%s", o.value)
		}
	}
	flags := []struct {
		label string
		value *bool
	}{
		{"Reduced CIT rate", p.CITRateReduced},
		{"Estonian CIT", p.EstonianCIT},
		{"Related-party transactions", p.RelatedPartyTransactions},
		{"R&D relief", p.RDRelief},
	}
	for _, f := range flags {
		if f.value != nil {
			printStatus(w, f.label, "%t", *f.value)
		}
	}
	if p.EmployeeCount != nil {
		printStatus(w, "Employees", "%d", *p.EmployeeCount)
	}
	if p.AnnualRevenue != nil {
		printStatus(w, "Annual revenue", "%.2f PLN", *p.AnnualRevenue)
	}
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the company profile",
	Long: `Create or update the company profile. Only the given flags change.

Examples:
  taxdesk profile set --name "Acme Sp. z o.o." --nip 1234567890
  taxdesk profile set --pkd 62.01.Z --employees 12 --estonian-cit`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		editor := view.NewProfileEditor(a.api.Profile)
		if _, err := editor.Load(cmd.Context()); err != nil {
			return err
		}
		var fields taxapi.CompanyProfileFields
		if p, ok := editor.Profile(); ok {
			fields = p.CompanyProfileFields
		}
		applyProfileFlags(cmd, &fields)

		saved, err := editor.Save(cmd.Context(), fields)
		if err != nil {
			var verrs view.ValidationErrors
			if errors.As(err, &verrs) {
				for _, v := range verrs {
					printError("%s: %s", v.Field, v.Message)
				}
			}
			return err
		}
		return render(cmd.OutOrStdout(), saved, func(w io.Writer) {
			printSuccess("Profile saved")
			printProfile(w, saved)
		})
	}),
}

func applyProfileFlags(cmd *cobra.Command, f *taxapi.CompanyProfileFields) {
	fl := cmd.Flags()
	str := func(name string, dst *string) {
		if fl.Changed(name) {
			*dst, _ = fl.GetString(name)
		}
	}
	boolean := func(name string, dst **bool) {
		if fl.Changed(name) {
			v, _ := fl.GetBool(name)
			*dst = &v
		}
	}

	str("name", &f.Name)
	str("nip", &f.NIP)
	str("vat-id", &f.VATID)
	str("industry", &f.Industry)
	str("pkd", &f.PKDCode)
	if fl.Changed("company-type") {
		v, _ := fl.GetString("company-type")
		f.CompanyType = taxapi.CompanyType(v)
	}
	if fl.Changed("revenue-range") {
		v, _ := fl.GetString("revenue-range")
		f.RevenueRange = taxapi.RevenueRange(v)
	}
	boolean("cit-reduced", &f.CITRateReduced)
	boolean("estonian-cit", &f.EstonianCIT)
	boolean("related-party", &f.RelatedPartyTransactions)
	boolean("rd-relief", &f.RDRelief)
	if fl.Changed("employees") {
		v, _ := fl.GetInt("employees")
		f.EmployeeCount = &v
	}
	if fl.Changed("revenue") {
		v, _ := fl.GetFloat64("revenue")
		f.AnnualRevenue = &v
	}
}

func init() {
	fl := profileSetCmd.Flags()
	fl.String("name", "", "company name")
	fl.String("nip", "", "tax identification number (10 digits)")
	fl.String("vat-id", "", "EU VAT ID (PL followed by 10 digits)")
	fl.String("industry", "", "industry")
	fl.String("company-type", "", "Sp. z o.o., S.A., JDG or Inna")
	fl.String("pkd", "", "PKD code, e.g. 62.01.Z")
	fl.String("revenue-range", "", "\"<200 k\" or \">200 k\"")
	fl.Bool("cit-reduced", false, "reduced 9% CIT rate applies")
	fl.Bool("estonian-cit", false, "Estonian CIT regime")
	fl.Bool("related-party", false, "has related-party transactions")
	fl.Bool("rd-relief", false, "uses the R&D relief")
	fl.Int("employees", 0, "number of employees")
	fl.Float64("revenue", 0, "annual revenue in PLN")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		return render(cmd.OutOrStdout(), keys, func(w io.Writer) {
			for _, k := range keys {
				fmt.Fprintf(w, "  %s = %s  %s\n", colorize(colorBold, k.Key), k.Value, colorize(colorDim, "$"+k.EnvVar))
			}
			fmt.Fprintln(w, colorize(colorDim, "  file: "+config.FilePath()))
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
