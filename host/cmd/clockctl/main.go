// Command clockctl queries a clockcored instance over its serial
// time-link.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"clockcore/host/serialport"
	"clockcore/host/timelink"
)

var (
	device = flag.String("device", "/dev/ttyS0", "Serial device path")
	baud   = flag.Int("baud", 250000, "Baud rate (ignored for USB CDC)")
)

func main() {
	flag.Parse()

	port, err := serialport.Open(&serialport.Config{
		Device:      *device,
		Baud:        *baud,
		ReadTimeout: 500,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "clockctl: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	client := timelink.NewClient(port)

	id, err := client.Identify()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clockctl: identify: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connected to %s (source %s)\n", id.Version, id.Source)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit", "q":
			return
		case "help", "?":
			printHelp()
		case "time":
			ts, err := client.GetTime()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Printf("%d.%09d\n", ts.Sec, ts.Nsec)
		case "uptime":
			up, err := client.GetUptime()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Printf("%dns\n", up)
		case "id":
			id, err := client.Identify()
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Printf("%s (source %s)\n", id.Version, id.Source)
		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", line)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "clockctl: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  time     - Query the peer's wall clock")
	fmt.Println("  uptime   - Query nanoseconds since the peer booted")
	fmt.Println("  id       - Re-identify the peer")
	fmt.Println("  quit     - Exit")
}
