// Command showroom is a terminal client for the showroom API: session
// management, notification listening, and group chat over the same
// contracts the web client uses.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"showroom/pkg/apiclient"
	"showroom/pkg/chat"
	"showroom/pkg/notify"
	"showroom/pkg/session"
)

func main() {
	log.SetFlags(0)

	base := flag.String("base", envOr("SHOWROOM_BASE_URL", "http://localhost:8088"), "API base URL")
	tokenFile := flag.String("token-file", defaultTokenPath(), "where the session tokens live")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	store := session.New(*base, session.NewFileTokens(*tokenFile))
	ctx := context.Background()

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "login":
		err = runLogin(ctx, store, flag.Args()[1:])
	case "logout":
		store.Logout(ctx)
		fmt.Println("logged out")
	case "me":
		err = runMe(ctx, store)
	case "notifications":
		err = runNotifications(ctx, store)
	case "listen":
		err = runListen(ctx, store, *base)
	case "rooms":
		err = runRooms(ctx, store)
	case "chat":
		err = runChat(ctx, store, *base, flag.Args()[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("error: %s", apiclient.ExtractMessage(err))
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: showroom [-base URL] [-token-file PATH] <command>

commands:
  login -email X -password Y   sign in and store the token pair
  logout                       sign out and clear stored tokens
  me                           show the current identity
  notifications                list my notifications
  listen                       stream push notifications until interrupted
  rooms                        list my chat rooms
  chat -room N -group N        join a room; lines typed are sent as messages`)
}

func runLogin(ctx context.Context, store *session.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)
	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}
	id, err := store.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s <%s> (%s)\n", id.FullName, id.Email, id.Role)
	return nil
}

func runMe(ctx context.Context, store *session.Store) error {
	store.Boot(ctx)
	id, ok := store.Identity()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("#%d %s <%s> role=%s\n", id.ID, id.FullName, id.Email, id.Role)
	return nil
}

func runNotifications(ctx context.Context, store *session.Store) error {
	var out struct {
		Notifications []notify.Notification `json:"notifications"`
		UnreadCount   int64                 `json:"unreadCount"`
	}
	if err := store.API().Get(ctx, "/Notifications", &out); err != nil {
		return err
	}
	fmt.Printf("%d unread\n", out.UnreadCount)
	for _, n := range out.Notifications {
		read := " "
		if n.ReadAt != nil {
			read = "r"
		}
		fmt.Printf("[%s] %-8s %s — %s\n", read, n.Type, n.Title, n.Body)
	}
	return nil
}

func runListen(ctx context.Context, store *session.Store, base string) error {
	store.Boot(ctx)
	id, ok := store.Identity()
	if !ok {
		return fmt.Errorf("not logged in")
	}
	mgr := notify.NewManager(notify.HubURL(base), store.AccessToken)
	mgr.Subscribe(func(n notify.Notification) {
		fmt.Printf("%-8s %s — %s\n", n.Type, n.Title, n.Body)
	})
	handle, err := mgr.Acquire(ctx, id.Email)
	if err != nil {
		return err
	}
	defer handle.Close()
	fmt.Printf("listening for notifications to %s, ctrl-c to stop\n", id.Email)
	waitForInterrupt()
	return nil
}

type roomInfo struct {
	ID        uint   `json:"id"`
	GroupID   uint   `json:"groupId"`
	GroupName string `json:"groupName"`
	ClassName string `json:"className"`
}

func runRooms(ctx context.Context, store *session.Store) error {
	var rooms []roomInfo
	if err := store.API().Get(ctx, "/Chat/rooms", &rooms); err != nil {
		return err
	}
	for _, r := range rooms {
		fmt.Printf("#%d %s (%s) group=%d\n", r.ID, r.GroupName, r.ClassName, r.GroupID)
	}
	return nil
}

func runChat(ctx context.Context, store *session.Store, base string, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	roomID := fs.Uint("room", 0, "room id")
	groupID := fs.Uint("group", 0, "group id")
	fs.Parse(args)

	store.Boot(ctx)
	id, ok := store.Identity()
	if !ok {
		return fmt.Errorf("not logged in")
	}

	url := wsBase(base) + "/ws/chat"
	room, err := chat.Open(ctx, chat.Options{URL: url, Token: store.AccessToken}, chat.Keys{
		RoomID:  uint(*roomID),
		UserID:  id.ID,
		GroupID: uint(*groupID),
	}, chat.Handlers{
		OnMessage: func(m chat.Message) {
			fmt.Printf("%s: %s\n", m.SenderName, m.Content)
		},
		OnTypingChanged: func(names []string) {
			if len(names) > 0 {
				fmt.Printf("(%s typing...)\n", strings.Join(names, ", "))
			}
		},
		OnStateChange: func(s chat.State) {
			fmt.Printf("(connection %s)\n", s)
		},
	})
	if err != nil {
		return err
	}
	defer room.Close()
	room.MarkRead()

	fmt.Println("connected; type to send, ctrl-d to quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := room.SendMessage(chat.Outbound{Content: line}); err != nil {
			fmt.Printf("(send failed: %s)\n", apiclient.ExtractMessage(err))
		}
	}
	return scanner.Err()
}

func wsBase(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

func waitForInterrupt() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".showroom-tokens.json"
	}
	return filepath.Join(home, ".showroom", "tokens.json")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
