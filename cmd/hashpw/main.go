// Command hashpw prints an encoded password hash suitable for AUTH_PASSWORD.
//
//	hashpw [-algo bcrypt|argon2id] [-cost n] [password]
//
// Without a password argument the password is read from stdin, without echo
// when stdin is a terminal.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/avilachehab/christmas-gifts/internal/auth"
	"github.com/avilachehab/christmas-gifts/internal/config"
)

func main() {
	algo := flag.String("algo", "bcrypt", "hash algorithm: bcrypt or argon2id")
	cost := flag.Int("cost", config.BcryptCost(), "bcrypt cost (default from AUTH_BCRYPT_COST)")
	flag.Parse()

	password, err := readPassword(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}

	encoded, err := hash(*algo, *cost, password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
	fmt.Println(encoded)
}

func hash(algo string, cost int, password string) (string, error) {
	switch algo {
	case "bcrypt":
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return "", fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
		return auth.HashPassword(password, cost)
	case "argon2id":
		return auth.HashPasswordArgon2id(password, auth.DefaultArgon2idParams)
	default:
		return "", fmt.Errorf("unknown algorithm %q", algo)
	}
}

func readPassword(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return nonEmpty(string(raw))
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return nonEmpty(strings.TrimRight(line, "\r\n"))
}

func nonEmpty(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}
