package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"mindmap/diagram"
	"mindmap/persist"
)

// findEditor picks the user's editor, falling back to common ones.
func findEditor() (string, error) {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if cmd := os.Getenv(env); cmd != "" {
			return cmd, nil
		}
	}
	for _, name := range []string{"vim", "nano", "vi"} {
		if _, err := exec.LookPath(name); err == nil {
			return name, nil
		}
	}
	return "", errors.New("no editor found, set $EDITOR")
}

// editDocument writes doc to a temporary file, lets the user edit it and
// decodes the result. changed is false when the file was left untouched or
// emptied.
func editDocument(doc diagram.Document) (diagram.Document, bool, error) {
	editorCmd, err := findEditor()
	if err != nil {
		return doc, false, err
	}

	data, err := persist.Encode(doc)
	if err != nil {
		return doc, false, err
	}

	tmp, err := os.CreateTemp("", "mindmap-edit-*.json")
	if err != nil {
		return doc, false, fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()
	defer os.Remove(name)

	// Some editors expect a trailing newline
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return doc, false, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return doc, false, fmt.Errorf("failed to close temp file: %w", err)
	}

	cmd := exec.Command(editorCmd, name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return doc, false, fmt.Errorf("editor failed: %w", err)
	}

	edited, err := os.ReadFile(name)
	if err != nil {
		return doc, false, fmt.Errorf("failed to read edited file: %w", err)
	}
	return decodeEdited(data, edited, doc)
}

// decodeEdited interprets the edited text against the original blob.
func decodeEdited(original, edited []byte, doc diagram.Document) (diagram.Document, bool, error) {
	edited = bytes.TrimSpace(edited)
	if len(edited) == 0 || bytes.Equal(edited, bytes.TrimSpace(original)) {
		return doc, false, nil
	}
	parsed, ok := persist.Decode(edited)
	if !ok {
		return doc, false, errors.New("edited document is not a valid mind map")
	}
	return parsed, true, nil
}
