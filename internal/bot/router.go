package bot

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/time/rate"
)

// maxSuggestionDistance is the largest edit distance for which an unknown
// command name is answered with a suggestion.
const maxSuggestionDistance = 2

// Router parses prefixed text commands and dispatches them to their handlers.
type Router struct {
	prefix string

	mu       sync.RWMutex
	commands map[string]Command

	limit     rate.Limit
	burst     int
	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewRouter creates a Router for the given prefix.
// Each user may issue limit commands per second with the given burst;
// a limit of zero or less disables rate limiting.
// The built-in help command is registered automatically.
func NewRouter(prefix string, limit float64, burst int) *Router {
	r := &Router{
		prefix:   prefix,
		commands: make(map[string]Command),
		limit:    rate.Inf,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
	if limit > 0 {
		r.limit = rate.Limit(limit)
	}
	if r.burst < 1 {
		r.burst = 1
	}

	r.commands["help"] = Command{
		Name:    "help",
		Brief:   "Shows this message",
		Handler: r.handleHelp,
	}

	return r
}

// Register adds a command. Names must be unique across all modules.
func (r *Router) Register(cmd Command) error {
	if cmd.Name == "" || strings.ContainsAny(cmd.Name, " \t\n") {
		return fmt.Errorf("invalid command name %q", cmd.Name)
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command %s has no handler", cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("command %s is already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	return nil
}

// Names returns the registered command names in sorted order.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse splits a message into a command name and its arguments.
// ok is false when the message does not start with the prefix or carries no command name.
func (r *Router) Parse(content string) (name string, args []string, ok bool) {
	rest, found := strings.CutPrefix(content, r.prefix)
	if !found {
		return "", nil, false
	}

	// "! roll" is not a command
	if rest == "" || strings.TrimLeft(rest, " \t\n") != rest {
		return "", nil, false
	}

	fields := strings.Fields(rest)
	return fields[0], fields[1:], true
}

// Dispatch routes a message to its command handler and reports whether the
// message was addressed to the router. Handler errors are logged and never
// reported to the channel; handlers that want to reply do so themselves.
func (r *Router) Dispatch(s *discordgo.Session, m *discordgo.MessageCreate, resp Responder) bool {
	name, args, ok := r.Parse(m.Content)
	if !ok {
		return false
	}

	if !r.allow(m.Author.ID) {
		slog.Debug("dropped rate-limited command", "command", name, "user_id", m.Author.ID)
		return true
	}

	r.mu.RLock()
	cmd, found := r.commands[name]
	r.mu.RUnlock()

	if !found {
		slog.Debug("found no handler for command", "command", name)
		if suggestion, ok := r.Suggest(name); ok {
			reply := fmt.Sprintf("Unknown command. Did you mean %s%s?", r.prefix, suggestion)
			if err := resp.Send(reply); err != nil {
				slog.Error("failed to send message", "channel", m.ChannelID, "error", err)
			}
		}
		return true
	}

	if err := cmd.Handler(s, m, args, resp); err != nil {
		slog.Error("failed to handle command",
			"command", name,
			"guild_id", m.GuildID,
			"user_id", m.Author.ID,
			"error", err,
		)
	}

	return true
}

// Suggest returns the registered command closest to name, if any is close enough.
func (r *Router) Suggest(name string) (string, bool) {
	names := r.Names()
	lower := strings.ToLower(name)

	// Prefer names that contain the input as a subsequence ("rol" -> "roll")
	ranks := fuzzy.RankFindFold(lower, names)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}

	// Fall back to edit distance for typos ("jion" -> "join")
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, candidate := range names {
		if d := fuzzy.LevenshteinDistance(lower, candidate); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	return best, best != ""
}

// allow reports whether the user may issue another command now.
func (r *Router) allow(userID string) bool {
	if r.limit == rate.Inf {
		return true
	}

	r.limiterMu.Lock()
	limiter, ok := r.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[userID] = limiter
	}
	r.limiterMu.Unlock()

	return limiter.Allow()
}

// HelpText renders the command list shown by the help command.
func (r *Router) HelpText() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	width := 0
	for name, cmd := range r.commands {
		names = append(names, name)
		width = max(width, len(usageLine(r.prefix, cmd)))
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteString("```\nCommands:\n")
	for _, name := range names {
		cmd := r.commands[name]
		fmt.Fprintf(&b, "  %-*s  %s\n", width, usageLine(r.prefix, cmd), cmd.Brief)
	}
	b.WriteString("```")
	return b.String()
}

func (r *Router) handleHelp(
	_ *discordgo.Session,
	_ *discordgo.MessageCreate,
	_ []string,
	resp Responder,
) error {
	return resp.Send(r.HelpText())
}

func usageLine(prefix string, cmd Command) string {
	if cmd.Usage == "" {
		return prefix + cmd.Name
	}
	return prefix + cmd.Name + " " + cmd.Usage
}
