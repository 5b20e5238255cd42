package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/rivenwatch/internal/catalog"
	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
	"github.com/danielpatrickdp/rivenwatch/internal/rpc"
	"github.com/danielpatrickdp/rivenwatch/internal/stock"
)

const usage = `commands (one per line, JSON on the same line):
  grade    {fingerprint}
  project  {fingerprint}
  identity {stock record}
  query    {match criteria}
  keep     {stock record}     store in the local stock table (needs --db)
  drop     <stock id>         remove from the local stock table (needs --db)
  quit`

// #region main
func main() {
	addr := flag.String("addr", envOr("RIVEN_ADDR", "localhost:50061"), "rivend address")
	dbPath := flag.String("db", "", "optional rivenwatch.db for the keep/drop commands")
	flag.Parse()

	client, err := rpc.NewClient(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer client.Close()

	var st *stock.Store
	if *dbPath != "" {
		store, err := catalog.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if st, err = stock.NewStore(store.DB()); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("rivenctl ready.")
	fmt.Printf("  Engine: %s\n", *addr)
	fmt.Println(usage)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		verb, arg, _ := strings.Cut(line, " ")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		out, err := dispatch(ctx, client, st, verb, strings.TrimSpace(arg))
		cancel()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}

// #endregion main

// #region dispatch
func dispatch(ctx context.Context, client *rpc.Client, st *stock.Store, verb, arg string) (string, error) {
	switch verb {
	case "grade":
		var fp riven.Fingerprint
		if err := json.Unmarshal([]byte(arg), &fp); err != nil {
			return "", fmt.Errorf("parse fingerprint: %w", err)
		}
		res, err := client.Grade(ctx, fp)
		if err != nil {
			return "", err
		}
		return render(res)
	case "project":
		var fp riven.Fingerprint
		if err := json.Unmarshal([]byte(arg), &fp); err != nil {
			return "", fmt.Errorf("parse fingerprint: %w", err)
		}
		res, err := client.Project(ctx, fp)
		if err != nil {
			return "", err
		}
		return render(res)
	case "identity":
		var rec riven.StockRecord
		if err := json.Unmarshal([]byte(arg), &rec); err != nil {
			return "", fmt.Errorf("parse stock record: %w", err)
		}
		id, canonical, err := client.Identity(ctx, rec)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s  %s", id, canonical), nil
	case "query":
		var c query.MatchCriteria
		if err := json.Unmarshal([]byte(arg), &c); err != nil {
			return "", fmt.Errorf("parse criteria: %w", err)
		}
		res, err := client.EncodeQuery(ctx, c)
		if err != nil {
			return "", err
		}
		return res.Encoded, nil
	case "keep":
		if st == nil {
			return "", errors.New("keep needs --db")
		}
		var rec riven.StockRecord
		if err := json.Unmarshal([]byte(arg), &rec); err != nil {
			return "", fmt.Errorf("parse stock record: %w", err)
		}
		id, created, err := st.Upsert(rec)
		if err != nil {
			return "", err
		}
		if created {
			return "stored " + id.String(), nil
		}
		return "updated " + id.String(), nil
	case "drop":
		if st == nil {
			return "", errors.New("drop needs --db")
		}
		id, err := uuid.Parse(arg)
		if err != nil {
			return "", fmt.Errorf("parse id: %w", err)
		}
		if err := st.Delete(id); err != nil {
			return "", err
		}
		return "removed " + id.String(), nil
	default:
		return "", fmt.Errorf("unknown command %q", verb)
	}
}

func render(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data), nil
}

// #endregion dispatch

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
