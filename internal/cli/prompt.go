package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/photoswipe/internal/folder"
)

// PromptForDirectory prompts the user for a directory path on out and reads
// the answer from in. Returns def if the user enters nothing.
func PromptForDirectory(in io.Reader, out io.Writer, def string) (string, error) {
	fmt.Fprintf(out, "Directory [%s]: ", def)

	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			return "", folder.ErrUserCancelled
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// PromptPicker is a folder.Picker that asks on the terminal. It is used when
// no native dialog is available.
type PromptPicker struct {
	In  io.Reader
	Out io.Writer
}

// PickFolder prompts for a folder, defaulting to the working directory, and
// resolves it to an absolute, readable directory. S3 URIs are passed
// through unchanged.
func (p PromptPicker) PickFolder(_ context.Context) (string, error) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	answer, err := PromptForDirectory(in, out, cwd)
	if err != nil {
		return "", err
	}
	if folder.IsS3(answer) {
		return answer, nil
	}

	dir, err := ValidateAndResolveDirectory(answer)
	if err != nil {
		log.Warn().Err(err).Str("path", answer).Msg("Prompted folder rejected")
		return "", err
	}
	return dir, nil
}
