package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/linguaroom/linguaroom/internal/config"
	"github.com/linguaroom/linguaroom/internal/stats"
	"github.com/linguaroom/linguaroom/internal/store"
	"github.com/linguaroom/linguaroom/internal/sweeper"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = cmdRegister(args)
	case "login":
		err = cmdLogin(args)
	case "whoami":
		err = cmdWhoami(args)
	case "logout":
		err = cmdLogout(args)
	case "rooms":
		err = cmdRooms(args)
	case "sweep":
		err = cmdSweep(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	fmt.Println("Usage: linguaroom <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  register                Register a user account")
	fmt.Println("  login                   Log in and print a session token")
	fmt.Println("  whoami                  Resolve a session token to its username")
	fmt.Println("  logout                  Invalidate a session token")
	fmt.Println("  rooms list              List all rooms")
	fmt.Println("  rooms create            Create a room")
	fmt.Println("  rooms delete            Delete a room (creator only)")
	fmt.Println("  sweep                   Delete inactive rooms (one-shot, or -watch)")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  LINGUAROOM_CONFIG       Path to a TOML config file (overridden by -config)")
}

// app bundles the store handles the subcommands operate on. The stores are
// explicit handles constructed once per invocation, not ambient globals.
type app struct {
	cfg      *config.Config
	log      *log.Logger
	stats    *stats.StatsUpdater
	rooms    *store.RoomStore
	sessions *store.SessionStore
}

func newApp(configPath string) (*app, error) {
	if configPath == "" {
		configPath = os.Getenv("LINGUAROOM_CONFIG")
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	logger := log.New(os.Stderr, "[linguaroom] ", log.LstdFlags)

	statsUpdater := stats.NewStatsUpdater("linguaroom-stats")
	statsUpdater.Run()

	rooms, err := store.NewRoomStore(cfg.RoomDataDir, logger, statsUpdater)
	if err != nil {
		statsUpdater.Stop()
		return nil, fmt.Errorf("open room store: %w", err)
	}

	sessions, err := store.NewSessionStore(cfg.AuthDataDir, time.Duration(cfg.SessionTTL), logger, statsUpdater)
	if err != nil {
		statsUpdater.Stop()
		return nil, fmt.Errorf("open session store: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		stats:    statsUpdater,
		rooms:    rooms,
		sessions: sessions,
	}, nil
}

func (a *app) close() {
	a.stats.Stop()
}

func cmdRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	username := fs.String("username", "", "username (at least 3 characters)")
	password := fs.String("password", "", "password (at least 6 characters)")
	email := fs.String("email", "", "email address (optional)")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.sessions.Register(*username, *password, *email); err != nil {
		return err
	}

	color.Green("Registered user %q\n", *username)
	return nil
}

func cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	token, err := a.sessions.Login(*username, *password)
	if err != nil {
		return err
	}

	color.Green("Logged in as %q\n", *username)
	fmt.Println(token)
	return nil
}

func cmdWhoami(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	token := fs.String("token", "", "session token")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	username, valid, err := a.sessions.ValidateSession(*token)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("session is invalid or expired")
	}

	info, err := a.sessions.GetUserInfo(username)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Printf("Username:  ")
	fmt.Println(info.Username)
	if info.Email != "" {
		cyan.Printf("Email:     ")
		fmt.Println(info.Email)
	}
	cyan.Printf("Created:   ")
	fmt.Println(info.CreatedAt)
	if info.LastLogin != "" {
		cyan.Printf("Last seen: ")
		fmt.Println(info.LastLogin)
	}
	return nil
}

func cmdLogout(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	token := fs.String("token", "", "session token")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.sessions.Logout(*token); err != nil {
		return err
	}

	color.Green("Logged out\n")
	return nil
}

func cmdRooms(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		return cmdRoomsList(args)
	case "create":
		return cmdRoomsCreate(args)
	case "delete":
		return cmdRoomsDelete(args)
	default:
		return fmt.Errorf("unknown rooms subcommand: %s", sub)
	}
}

func cmdRoomsList(args []string) error {
	fs := flag.NewFlagSet("rooms list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	rooms, err := a.rooms.ListRooms()
	if err != nil {
		return err
	}

	if len(rooms) == 0 {
		fmt.Println("No rooms")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tCREATOR\tLANG\tUSERS\tMESSAGES\tLAST ACTIVITY")
	for _, r := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.RoomId, r.Creator, r.RoomLanguage, r.ParticipantCount, r.MessageCount, r.LastActivity)
	}
	return w.Flush()
}

func cmdRoomsCreate(args []string) error {
	fs := flag.NewFlagSet("rooms create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	roomId := fs.String("id", "", "room id (generated if empty)")
	lang := fs.String("lang", string(store.DefaultLanguage), "room language (zh or en)")
	creator := fs.String("creator", "", "creator username (joins the room)")
	creatorLang := fs.String("creator-lang", "", "creator display language")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	id := *roomId
	if id == "" {
		id, err = store.NewRoomId()
		if err != nil {
			return err
		}
	}

	status, err := a.rooms.CreateRoom(id, store.Language(*lang), *creator, store.Language(*creatorLang))
	if err != nil {
		return err
	}

	switch status {
	case store.StatusCreated:
		color.Green("Created room %q\n", id)
	case store.StatusAlreadyMember:
		color.Yellow("Room %q already exists and %q is already a member\n", id, *creator)
	default:
		color.Yellow("Room %q already exists\n", id)
	}
	return nil
}

func cmdRoomsDelete(args []string) error {
	fs := flag.NewFlagSet("rooms delete", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	roomId := fs.String("id", "", "room id")
	username := fs.String("as", "", "acting username (must be the room creator)")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.rooms.DeleteRoom(*roomId, *username); err != nil {
		return err
	}

	color.Green("Deleted room %q\n", *roomId)
	return nil
}

func cmdSweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	watch := fs.Bool("watch", false, "keep sweeping on the configured interval")
	interval := fs.Duration("interval", 0, "override sweep interval")
	threshold := fs.Duration("threshold", 0, "override inactivity threshold")
	fs.Parse(args)

	a, err := newApp(*configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if *interval == 0 {
		*interval = time.Duration(a.cfg.SweepInterval)
	}
	if *threshold == 0 {
		*threshold = time.Duration(a.cfg.InactivityThreshold)
	}

	sw := sweeper.New(a.rooms, a.log, *interval, *threshold)

	deleted, err := sw.SweepOnce()
	if err != nil {
		return err
	}
	color.Green("Evicted %d inactive room(s)\n", len(deleted))

	if !*watch {
		return nil
	}

	sw.Run()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	a.log.Printf("received signal: %s\n", sig)

	a.log.Println("stopping sweeper...")
	sw.Stop()
	a.log.Println("shutdown complete")
	return nil
}
