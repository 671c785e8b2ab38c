package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// confirm asks before anything is broadcast. Without a terminal on stdin there
// is nobody to ask, so --yes is required.
func confirm(in io.Reader, out io.Writer, yes bool, msg string) error {
	if yes {
		return nil
	}
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return fmt.Errorf("refusing to send without a terminal; pass --yes")
	}

	ok, err := promptYesNo(in, out, msg+" [y/N]: ")
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cancelled")
	}
	return nil
}

func promptYesNo(in io.Reader, out io.Writer, msg string) (bool, error) {
	fmt.Fprint(out, msg)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	s := strings.TrimSpace(strings.ToLower(line))
	return s == "y" || s == "yes", nil
}
