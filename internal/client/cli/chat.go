package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/IndraPur1/ChatApp/internal/common"
)

// maxImageBytes caps what gets inlined into a message. Images travel as
// base64 inside the snapshot, so a large file would bloat every sync.
const maxImageBytes = 4 << 20

// Send reads one line of text and appends it to the shared log. An empty
// line is silently dropped.
func (a *App) Send(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		text, err = getSimpleText(a.reader, "Enter message", os.Stdout)
		if err != nil {
			return err
		}
	}

	if err := a.chat.SendText(ctx, a.controller.DisplayName(), text); err != nil {
		if errors.Is(err, common.ErrSend) {
			fmt.Println("Could not send the message, try again.")
		}
		return err
	}
	return nil
}

// SendImage reads a file path, inlines the file and appends it as an image
// message.
func (a *App) SendImage(ctx context.Context, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		var err error
		path, err = getSimpleText(a.reader, "Enter image file path", os.Stdout)
		if err != nil {
			return err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Could not read file:", err)
		return err
	}
	if len(data) > maxImageBytes {
		fmt.Printf("File too large (%d bytes, limit %d)\n", len(data), maxImageBytes)
		return fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	if err := a.chat.SendImage(ctx, a.controller.DisplayName(), mimeForFile(path), data); err != nil {
		if errors.Is(err, common.ErrSend) {
			fmt.Println("Could not send the image, try again.")
		}
		return err
	}
	return nil
}

// History reprints the full message log: the live view when synced, the
// local cache otherwise.
func (a *App) History(ctx context.Context) error {
	msgs := a.chat.Messages()
	if len(msgs) == 0 {
		msgs = a.chat.CachedHistory(ctx)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return nil
	}

	a.mu.Lock()
	a.rendered = len(msgs)
	a.mu.Unlock()
	for _, m := range msgs {
		printMessage(m)
	}
	return nil
}

func mimeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
