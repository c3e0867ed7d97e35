package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/hirepath/admin-console/internal/api"
	"github.com/hirepath/admin-console/internal/controller"
	"github.com/hirepath/admin-console/internal/derive"
	"github.com/hirepath/admin-console/internal/session"
	"github.com/hirepath/admin-console/pkg/config"
	"github.com/hirepath/admin-console/pkg/export"
	"github.com/hirepath/admin-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := session.NewFileStore(cfg.Session.Path)
	if err != nil {
		logr.Sugar().Fatalw("failed to open session store", "error", err)
	}

	client := api.New(cfg, store, logr)
	engine := derive.NewEngine(nil)

	console := &console{
		cfg:        cfg,
		in:         bufio.NewScanner(os.Stdin),
		out:        os.Stdout,
		session:    store,
		auth:       controller.NewAuthController(client, store, nil, logr),
		users:      controller.NewUsersController(client, engine, cfg.Console.PageSize, logr),
		recruiters: controller.NewRecruitersController(client, engine, cfg.Console.PageSize, logr),
		documents:  controller.NewDocumentsController(),
		dashboard:  controller.NewDashboardController(client, logr),
		analytics:  controller.NewAnalyticsController(client, logr),
		logger:     logr,
	}
	console.run()
}

type console struct {
	cfg        *config.Config
	in         *bufio.Scanner
	out        io.Writer
	session    session.Store
	auth       *controller.AuthController
	users      *controller.UsersController
	recruiters *controller.RecruitersController
	documents  *controller.DocumentsController
	dashboard  *controller.DashboardController
	analytics  *controller.AnalyticsController
	logger     *zap.Logger
}

func (c *console) run() {
	ctx := context.Background()

	for {
		if !c.auth.LoggedIn() {
			if !c.loginScreen(ctx) {
				return
			}
			continue
		}
		c.warnIfExpiring()
		if !c.mainMenu(ctx) {
			return
		}
	}
}

func (c *console) warnIfExpiring() {
	exp, ok := session.TokenExpiry(c.session.Token())
	if !ok {
		return
	}
	if remaining := time.Until(exp); remaining < 0 {
		fmt.Fprintln(c.out, "! session token has expired; requests will be rejected until you log in again")
	} else if remaining < 10*time.Minute {
		fmt.Fprintf(c.out, "! session token expires in %s\n", remaining.Round(time.Minute))
	}
}

func (c *console) prompt(label string) (string, bool) {
	fmt.Fprintf(c.out, "%s ", label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// loginScreen runs the unauthenticated flows. Returns false on EOF/quit.
func (c *console) loginScreen(ctx context.Context) bool {
	fmt.Fprintln(c.out, "\n== Admin Console ==")
	fmt.Fprintln(c.out, "[1] login  [2] sign up  [3] forgot password  [q] quit")
	choice, ok := c.prompt(">")
	if !ok || choice == "q" {
		return false
	}

	switch choice {
	case "1":
		email, _ := c.prompt("email:")
		password, _ := c.prompt("password:")
		if err := c.auth.Login(ctx, email, password); err != nil {
			fmt.Fprintf(c.out, "login failed: %s\n", err)
			return true
		}
		fmt.Fprintf(c.out, "welcome, %s\n", c.session.AdminName())
	case "2":
		first, _ := c.prompt("first name:")
		last, _ := c.prompt("last name:")
		email, _ := c.prompt("email:")
		password, _ := c.prompt("password (min 8 chars):")
		if err := c.auth.Signup(ctx, first, last, email, password); err != nil {
			fmt.Fprintf(c.out, "signup failed: %s\n", err)
			return true
		}
		fmt.Fprintf(c.out, "account created; welcome, %s\n", c.session.AdminName())
	case "3":
		c.forgotPasswordFlow(ctx)
	}
	return true
}

func (c *console) forgotPasswordFlow(ctx context.Context) {
	email, _ := c.prompt("email:")
	if err := c.auth.ForgotPassword(ctx, email); err != nil {
		fmt.Fprintf(c.out, "request failed: %s\n", err)
		return
	}
	fmt.Fprintln(c.out, "a 6-digit code was sent to your email")

	code, _ := c.prompt("code:")
	if err := c.auth.VerifyResetCode(ctx, email, code); err != nil {
		fmt.Fprintf(c.out, "verification failed: %s\n", err)
		return
	}

	password, _ := c.prompt("new password:")
	confirm, _ := c.prompt("confirm password:")
	if err := c.auth.ResetPassword(ctx, email, password, confirm); err != nil {
		fmt.Fprintf(c.out, "reset failed: %s\n", err)
		return
	}
	fmt.Fprintln(c.out, "password updated; log in with the new password")
}

// mainMenu routes between screens. Returns false on EOF/quit.
func (c *console) mainMenu(ctx context.Context) bool {
	fmt.Fprintf(c.out, "\n== %s ==\n", c.session.AdminName())
	fmt.Fprintln(c.out, "[1] dashboard  [2] students  [3] recruiters  [4] documents  [5] analytics  [6] logout  [q] quit")
	choice, ok := c.prompt(">")
	if !ok || choice == "q" {
		return false
	}

	switch choice {
	case "1":
		c.dashboardScreen(ctx)
	case "2":
		c.usersScreen(ctx)
	case "3":
		c.recruitersScreen(ctx)
	case "4":
		c.documentsScreen()
	case "5":
		c.analyticsScreen(ctx)
	case "6":
		if err := c.auth.Logout(); err != nil {
			fmt.Fprintf(c.out, "logout failed: %s\n", err)
		}
	}
	return true
}

func (c *console) dashboardScreen(ctx context.Context) {
	if err := c.dashboard.Load(ctx); err != nil {
		fmt.Fprintf(c.out, "dashboard failed to load: %s\n", err)
		return
	}
	for {
		view := c.dashboard.View()
		fmt.Fprintf(c.out, "\ntotal users: %d  students: %d  recruiters: %d  paying: %d\n",
			view.Stats.TotalUsers, view.Stats.TotalStudents, view.Stats.TotalRecruiters, view.PaidUsers)

		w := view.Location
		if w.Error != "" {
			fmt.Fprintf(c.out, "location widget unavailable: %s\n", w.Error)
		} else {
			fmt.Fprintf(c.out, "countries: %s\n", strings.Join(w.Countries, ", "))
			if w.SelectedCountry != "" {
				fmt.Fprintf(c.out, "%s states: %s\n", w.SelectedCountry, strings.Join(w.States, ", "))
			}
			if w.Stats != nil {
				fmt.Fprintf(c.out, "%s / %s: %d users (%d students, %d recruiters)\n",
					w.SelectedCountry, w.SelectedState, w.Stats.Count, w.Stats.Students, w.Stats.Recruiters)
			}
		}

		fmt.Fprintln(c.out, "[c <country>] pick country  [s <state>] pick state  [r] refresh  [b] back")
		cmd, ok := c.prompt("dashboard>")
		if !ok || cmd == "b" {
			return
		}
		switch {
		case strings.HasPrefix(cmd, "c "):
			if err := c.dashboard.SelectCountry(ctx, strings.TrimSpace(cmd[2:])); err != nil {
				fmt.Fprintf(c.out, "states failed to load: %s\n", err)
			}
		case strings.HasPrefix(cmd, "s "):
			if err := c.dashboard.SelectState(ctx, strings.TrimSpace(cmd[2:])); err != nil {
				fmt.Fprintf(c.out, "breakdown failed to load: %s\n", err)
			}
		case cmd == "r":
			if err := c.dashboard.Refresh(ctx); err != nil {
				fmt.Fprintf(c.out, "refresh failed: %s\n", err)
			}
		}
	}
}

func (c *console) usersScreen(ctx context.Context) {
	if err := c.users.Load(ctx); err != nil {
		fmt.Fprintf(c.out, "students failed to load: %s\n", err)
		return
	}
	for {
		view := c.users.View()
		c.renderUsersView(view)

		fmt.Fprintln(c.out, "[/ <term>] search  [st <status>] status  [co <country>] [ci <city>] [u <university>] filter")
		fmt.Fprintln(c.out, "[n] next  [p] prev  [v <id>] scores  [t <id>] tick  [T] tick all  [csv|pdf] export  [r] refresh  [b] back")
		cmd, ok := c.prompt("students>")
		if !ok || cmd == "b" {
			return
		}
		c.handleUsersCommand(ctx, cmd)
	}
}

func (c *console) renderUsersView(view controller.UsersView) {
	if view.Error != "" {
		fmt.Fprintf(c.out, "error: %s\n", view.Error)
	}
	fmt.Fprintf(c.out, "\ntotal: %d  active today: %d  active monthly: %d  new today: %d\n",
		view.Summary.Total, view.Summary.ActiveToday, view.Summary.ActiveMonthly, view.Summary.NewToday)

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEL\tID\tNAME\tEMAIL\tCOUNTRY\tCITY\tUNIVERSITY")
	selected := map[string]bool{}
	for _, id := range view.Selected {
		selected[id] = true
	}
	for _, record := range view.Page.Records {
		mark := " "
		if selected[record.ID] {
			mark = "x"
		}
		country, city, university := "", "", ""
		if record.Location != nil {
			country, city, university = record.Location.Country, record.Location.City, record.Location.University
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, record.ID, record.FullName(), record.Email, country, city, university)
	}
	w.Flush() //nolint:errcheck
	fmt.Fprintf(c.out, "page %d/%d (%d filtered)\n", view.Page.Page, view.Page.TotalPages, view.Page.Total)

	if view.Detail != nil {
		c.renderScoreDetail(view.Detail)
	}
}

func (c *console) renderScoreDetail(detail *controller.ScoreDetail) {
	switch {
	case detail.Loading:
		fmt.Fprintf(c.out, "loading scores for %s...\n", detail.UserID)
	case detail.Error != "":
		fmt.Fprintf(c.out, "scores unavailable: %s\n", detail.Error)
	case detail.Rank == nil:
		fmt.Fprintf(c.out, "no assessment record for %s\n", detail.UserID)
	default:
		r := detail.Rank
		fmt.Fprintf(c.out, "scores for %s: hireability %.1f  baseline %.1f  case studies %d\n",
			detail.UserID, r.HireabilityIndex, r.BaselineScore, r.CaseStudiesCompleted)
		fmt.Fprintf(c.out, "ranks: global #%d  country #%d  state #%d  city #%d\n",
			r.GlobalRank, r.CountryRank, r.StateRank, r.CityRank)
	}
}

func (c *console) handleUsersCommand(ctx context.Context, cmd string) {
	switch {
	case strings.HasPrefix(cmd, "/ "):
		c.users.SetSearch(strings.TrimSpace(cmd[2:]))
	case cmd == "/":
		c.users.SetSearch("")
	case strings.HasPrefix(cmd, "st "):
		c.users.SetStatus(strings.TrimSpace(cmd[3:]))
	case strings.HasPrefix(cmd, "co "):
		c.users.SetCountry(strings.TrimSpace(cmd[3:]))
	case strings.HasPrefix(cmd, "ci "):
		c.users.SetCity(strings.TrimSpace(cmd[3:]))
	case strings.HasPrefix(cmd, "u "):
		c.users.SetUniversity(strings.TrimSpace(cmd[2:]))
	case cmd == "n":
		c.users.NextPage()
	case cmd == "p":
		c.users.PrevPage()
	case strings.HasPrefix(cmd, "v "):
		if err := c.users.Select(ctx, strings.TrimSpace(cmd[2:])); err != nil {
			fmt.Fprintf(c.out, "scores failed to load: %s\n", err)
		}
	case strings.HasPrefix(cmd, "t "):
		c.users.ToggleRow(strings.TrimSpace(cmd[2:]))
	case cmd == "T":
		c.users.ToggleAll()
	case cmd == "csv":
		c.exportUsers("csv")
	case cmd == "pdf":
		c.exportUsers("pdf")
	case cmd == "r":
		if err := c.users.Refresh(ctx); err != nil {
			fmt.Fprintf(c.out, "refresh failed: %s\n", err)
		}
	}
}

func (c *console) exportUsers(format string) {
	var raw []byte
	var err error
	if format == "pdf" {
		raw, err = c.users.ExportPDF()
	} else {
		raw, err = c.users.ExportCSV()
	}
	if err != nil {
		fmt.Fprintf(c.out, "export failed: %s\n", err)
		return
	}

	sink, err := export.NewSink(c.cfg.Console.ExportDir)
	if err != nil {
		fmt.Fprintf(c.out, "export failed: %s\n", err)
		return
	}
	path, err := sink.Store("students", format, raw, time.Now())
	if err != nil {
		fmt.Fprintf(c.out, "export failed: %s\n", err)
		return
	}
	fmt.Fprintf(c.out, "wrote %s\n", path)

	if ttl := c.cfg.Console.ExportTTL; ttl > 0 {
		removed, err := sink.CleanupOlderThan(ttl)
		if err != nil {
			c.logger.Warn("export cleanup failed", zap.Error(err))
		} else if len(removed) > 0 {
			fmt.Fprintf(c.out, "removed %d expired export(s)\n", len(removed))
		}
	}
}

func (c *console) documentsScreen() {
	view := c.documents.View()
	fmt.Fprintf(c.out, "\n== %s ==\n%s\n", view.Title, view.Message)
}

func (c *console) recruitersScreen(ctx context.Context) {
	if err := c.recruiters.Load(ctx); err != nil {
		fmt.Fprintf(c.out, "recruiters failed to load: %s\n", err)
		return
	}
	for {
		view := c.recruiters.View()
		if view.Error != "" {
			fmt.Fprintf(c.out, "error: %s\n", view.Error)
		}
		fmt.Fprintf(c.out, "\ntotal: %d  active today: %d  active monthly: %d  new today: %d\n",
			view.Summary.Total, view.Summary.ActiveToday, view.Summary.ActiveMonthly, view.Summary.NewToday)

		w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOUNTRY\tCITY")
		for _, record := range view.Page.Records {
			country, city := "", ""
			if record.Location != nil {
				country, city = record.Location.Country, record.Location.City
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", record.ID, record.FullName(), record.Email, country, city)
		}
		w.Flush() //nolint:errcheck
		fmt.Fprintf(c.out, "page %d/%d (%d filtered)\n", view.Page.Page, view.Page.TotalPages, view.Page.Total)

		if view.Detail != nil {
			d := view.Detail
			fmt.Fprintf(c.out, "recruiter %s <%s>, joined %s\n", d.FullName(), d.Email, d.CreatedAt.Format("2006-01-02"))
		}

		fmt.Fprintln(c.out, "[/ <term>] search  [co <country>] [ci <city>] filter  [n] next  [p] prev  [v <id>] detail  [r] refresh  [b] back")
		cmd, ok := c.prompt("recruiters>")
		if !ok || cmd == "b" {
			return
		}
		switch {
		case strings.HasPrefix(cmd, "/ "):
			c.recruiters.SetSearch(strings.TrimSpace(cmd[2:]))
		case strings.HasPrefix(cmd, "co "):
			c.recruiters.SetCountry(strings.TrimSpace(cmd[3:]))
		case strings.HasPrefix(cmd, "ci "):
			c.recruiters.SetCity(strings.TrimSpace(cmd[3:]))
		case cmd == "n":
			c.recruiters.NextPage()
		case cmd == "p":
			c.recruiters.PrevPage()
		case strings.HasPrefix(cmd, "v "):
			if !c.recruiters.Select(strings.TrimSpace(cmd[2:])) {
				fmt.Fprintln(c.out, "no recruiter with that id")
			}
		case cmd == "r":
			if err := c.recruiters.Refresh(ctx); err != nil {
				fmt.Fprintf(c.out, "refresh failed: %s\n", err)
			}
		}
	}
}

func (c *console) analyticsScreen(ctx context.Context) {
	c.analytics.Load(ctx)
	view := c.analytics.View()

	if view.Engagement.State == controller.StateErrored {
		fmt.Fprintf(c.out, "engagement metrics unavailable: %s\n", view.Engagement.Error)
	} else {
		e := view.EngagementData
		fmt.Fprintf(c.out, "\nusers: %d  paying: %d  daily active: %d  monthly active: %d  new today: %d\n",
			e.TotalUsers, e.PayingUsers, e.DailyActiveUsers, e.MonthlyActiveUsers, e.NewUsersToday)
	}

	if view.CaseStudies.State == controller.StateErrored {
		fmt.Fprintf(c.out, "case study metrics unavailable: %s\n", view.CaseStudies.Error)
		return
	}
	cs := view.CaseStudyData
	fmt.Fprintf(c.out, "case studies: %.1f started/user  %.1f completed/user  %.1f%% completion  %.1f min avg\n",
		cs.AvgStartedPerUser, cs.AvgCompletedPerUser, cs.CompletionRate, cs.AvgTimeMinutes)

	if view.Funnel != nil {
		f := view.Funnel
		fmt.Fprintf(c.out, "funnel: %d signed up -> %d started (%.0f%%) -> %d completed (%.0f%%) -> %d case studies (%.0f%%)\n",
			f.Signup.Users,
			f.AssessmentStarted.Users, f.AssessmentStarted.Conversion,
			f.AssessmentCompleted.Users, f.AssessmentCompleted.Conversion,
			f.CaseStudyStarted.Users, f.CaseStudyStarted.Conversion)
	}
}
