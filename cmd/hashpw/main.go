// Command hashpw prints a bcrypt hash for a roster account's password_hash.
// The password is read from the terminal without echo, or from stdin when
// stdin is not a terminal.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// test seams
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	if err := run(os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(stdin *os.File, stdout, stderr io.Writer) error {
	pw, err := readSecret(stdin, stderr)
	if err != nil {
		return err
	}
	hash, err := hashPassword(pw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func readSecret(stdin *os.File, prompt io.Writer) ([]byte, error) {
	fd := int(stdin.Fd())
	if !isTerminal(fd) {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(prompt, "Enter password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(prompt)
	return pw, err
}

func hashPassword(pw []byte) (string, error) {
	if len(pw) == 0 {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
