package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/classcall/internal/domain"
)

const (
	replyStarted        = "Class Call started"
	replyRestarted      = "Class Call restarted"
	replyStopped        = "Class Call stopped"
	replyLocked         = "Class Call locked."
	replyLockSet        = "Class call locked."
	replyUnlockSet      = "Class call unlocked."
	replyImported       = "Class Call imported"
	replyImportRejected = "Invalid format, preserving original Class Call"
	replyInvalidTimer   = "Lock timer must be a positive whole number of seconds."
)

// command is one prefixed chat command. run returns the replies to send,
// in order; no replies means the command is silently ignored.
type command struct {
	name  string
	usage string
	help  string
	run   func(ctx context.Context, d *Dispatcher, msg Message, args []string) []string
}

func builtinCommands() []command {
	return []command{
		{
			name:  "cc",
			usage: "[format]",
			help:  "Responds with the current Class Call. If given a format as an argument, it will respond with the current Class Call in that format.",
			run:   runDisplay,
		},
		{name: "startcc", help: "Starts the Class Call.", run: runStart},
		{name: "clearcc", help: "Resets the Class Call.", run: runReset},
		{name: "stopcc", help: "Disables the Class Call.", run: runStop},
		{
			name:  "set_format",
			usage: "<format>",
			help:  fmt.Sprintf("Set format the Class Call is output in. Possible formats: %s, %s", domain.FormatDefault, domain.FormatGrid),
			run:   runSetFormat,
		},
		{
			name:  "import_cc",
			usage: "<class call>",
			help:  "Imports a Class Call. Only supports the default format. Multiple blank space characters are squashed into one.",
			run:   runImport,
		},
		{
			name:  "close",
			usage: "<slot>...",
			help:  "Close all slots listed by marking the call with \"--\". Slots are listed by number, separated by spaces.",
			run:   runClose,
		},
		{
			name:  "mode",
			usage: "[mode]",
			help:  "Set the mode. Accepts a string representing the mode declared.",
			run:   runMode,
		},
		{
			name:  "leader",
			usage: "[leader]",
			help:  "Set the leader. Accepts a string representing the leader declared.",
			run:   runLeader,
		},
		{name: "lock", help: "Locks the class call, so no more calls can be made.", run: runLock},
		{name: "unlock", help: "Unlocks the class call, so calls can be made.", run: runUnlock},
		{
			name:  "set_lock_timer",
			usage: "[seconds]",
			help:  "Sets the inactivity period until the class call is automatically locked, in seconds.",
			run:   runSetLockTimer,
		},
		{
			name:  "swap",
			usage: "<slot> <slot>",
			help:  "Swaps the position of two classes in the class call. Example, !swap 1 9",
			run:   runSwap,
		},
		{name: "help", help: "Shows this message.", run: runHelp},
	}
}

func runDisplay(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	format := ""
	if len(args) > 0 {
		format = args[0]
	}

	rendered, err := d.service.Display(ctx, format)
	if err != nil {
		return d.errorReply(ctx, "cc", err)
	}
	return []string{rendered}
}

func runStart(ctx context.Context, d *Dispatcher, _ Message, _ []string) []string {
	if _, err := d.service.Start(ctx); err != nil {
		return d.errorReply(ctx, "startcc", err)
	}
	return []string{replyStarted}
}

func runReset(ctx context.Context, d *Dispatcher, _ Message, _ []string) []string {
	if _, err := d.service.Reset(ctx); err != nil {
		return d.errorReply(ctx, "clearcc", err)
	}
	return []string{replyRestarted}
}

func runStop(ctx context.Context, d *Dispatcher, _ Message, _ []string) []string {
	d.service.Stop(ctx)
	return []string{replyStopped}
}

func runSetFormat(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	if len(args) == 0 {
		return []string{d.usage("set_format")}
	}

	if err := d.service.SetFormat(ctx, args[0]); err != nil {
		return d.errorReply(ctx, "set_format", err)
	}
	return []string{fmt.Sprintf("Set format to %s", args[0])}
}

func runImport(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	result, err := d.service.Import(ctx, strings.Join(args, " "))

	var replies []string
	if result.Started {
		replies = append(replies, replyStarted)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImport) {
			return append(replies, replyImportRejected)
		}
		return append(replies, d.errorReply(ctx, "import_cc", err)...)
	}

	return append(replies, replyImported, result.Rendered)
}

func runClose(ctx context.Context, d *Dispatcher, msg Message, args []string) []string {
	if len(args) == 0 {
		return []string{d.usage("close")}
	}

	rendered, err := d.service.Close(ctx, msg.Author, args)
	if err != nil {
		return d.errorReply(ctx, "close", err)
	}
	return []string{fmt.Sprintf("Closed slots %s", strings.Join(args, " ")), rendered}
}

func runMode(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	value := strings.Join(args, " ")
	mode, err := d.service.Mode(ctx, value)
	if err != nil {
		return d.errorReply(ctx, "mode", err)
	}
	if value != "" {
		return []string{fmt.Sprintf("Mode set to %s", mode)}
	}
	return []string{fmt.Sprintf("Mode currently set to %s", mode)}
}

func runLeader(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	value := strings.Join(args, " ")
	leader, err := d.service.Leader(ctx, value)
	if err != nil {
		return d.errorReply(ctx, "leader", err)
	}
	if value != "" {
		return []string{fmt.Sprintf("Leader set to %s", leader)}
	}
	return []string{fmt.Sprintf("Leader currently set to %s", leader)}
}

func runLock(ctx context.Context, d *Dispatcher, _ Message, _ []string) []string {
	if err := d.service.Lock(ctx); err != nil {
		return d.errorReply(ctx, "lock", err)
	}
	return []string{replyLockSet}
}

func runUnlock(ctx context.Context, d *Dispatcher, _ Message, _ []string) []string {
	if err := d.service.Unlock(ctx); err != nil {
		return d.errorReply(ctx, "unlock", err)
	}
	return []string{replyUnlockSet}
}

func runSetLockTimer(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	if len(args) == 0 {
		seconds, err := d.service.LockTimer(ctx)
		if err != nil {
			return d.errorReply(ctx, "set_lock_timer", err)
		}
		return []string{fmt.Sprintf("Lock timer currently set to %d", seconds)}
	}

	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return []string{replyInvalidTimer}
	}
	if err := d.service.SetLockTimer(ctx, seconds); err != nil {
		return d.errorReply(ctx, "set_lock_timer", err)
	}
	return []string{fmt.Sprintf("Lock timer set to %d", seconds)}
}

// runSwap stays silent on malformed arguments; only a locked roster gets a
// reply.
func runSwap(ctx context.Context, d *Dispatcher, _ Message, args []string) []string {
	if len(args) != 2 {
		return nil
	}

	rendered, err := d.service.Swap(ctx, args[0], args[1])
	switch {
	case errors.Is(err, domain.ErrInvalidSlot):
		return nil
	case err != nil:
		return d.errorReply(ctx, "swap", err)
	}
	return []string{fmt.Sprintf("Swapped slots %s and %s", args[0], args[1]), rendered}
}

func runHelp(_ context.Context, d *Dispatcher, _ Message, _ []string) []string {
	lines := make([]string, 0, len(d.order)+1)
	lines = append(lines, "Commands:")
	for _, name := range d.order {
		cmd := d.commands[name]
		signature := d.prefix + cmd.name
		if cmd.usage != "" {
			signature += " " + cmd.usage
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", signature, cmd.help))
	}
	return []string{strings.Join(lines, "\n")}
}
