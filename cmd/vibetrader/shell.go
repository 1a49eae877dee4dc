package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tomislav-safran/vibe-trader/internal/config"
	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/position"
	"github.com/tomislav-safran/vibe-trader/internal/trade"
)

// Shell is the interactive command surface. Each command maps directly to
// one executor or scheduler operation.
type Shell struct {
	ex            exchange.Exchange
	sizer         *position.Sizer
	aiExecutor    *trade.AiExecutor
	algoExecutor  *trade.AlgoExecutor
	aiScheduler   *trade.Scheduler
	algoScheduler *trade.Scheduler
}

const helpText = `Commands:
  trade place <symbol> [config]                 craft and place a single AI trade
  trade schedule <symbol> <minutes> [config]    schedule recurring AI trades
  trade cancel <symbol>                         cancel a scheduled AI trade
  algo place <symbol> <strategy>                place a single algo trade
  algo schedule <symbols> <minutes> <strategy>  schedule recurring algo trades (symbols comma-separated)
  algo cancel <symbol>                          cancel a scheduled algo trade
  position size <symbol> <side> <entry> <tp> <sl>  dry-run the sizing engine
  bybit klines <symbol> <category> <interval> [limit]  fetch raw klines
  bybit order <symbol> <side> <qty> [tp] [sl]   place a raw market order
  help                                          show this help
  exit                                          quit`

// Run reads commands until EOF or "exit".
func (s *Shell) Run(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "vibe-trader shell, type 'help' for commands")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		fmt.Fprintln(out, s.Dispatch(line))
	}
}

// Dispatch executes one command line and returns the reply text.
func (s *Shell) Dispatch(line string) string {
	args := strings.Fields(line)
	switch args[0] {
	case "help":
		return helpText
	case "trade":
		return s.tradeCmd(args[1:])
	case "algo":
		return s.algoCmd(args[1:])
	case "position":
		return s.positionCmd(args[1:])
	case "bybit":
		return s.bybitCmd(args[1:])
	default:
		return fmt.Sprintf("Unknown command %q, type 'help'", args[0])
	}
}

func (s *Shell) tradeCmd(args []string) string {
	if len(args) < 2 {
		return "Usage: trade place|schedule|cancel <symbol> ..."
	}
	switch args[0] {
	case "place":
		configName := ""
		if len(args) > 2 {
			configName = args[2]
		}
		orderID, err := s.aiExecutor.CraftAndPlaceTrade(context.Background(), strings.ToUpper(args[1]), configName)
		if err != nil {
			return fmt.Sprintf("Trade failed: %v", err)
		}
		if orderID == "" {
			return "No trade placed."
		}
		return "Order placed: " + orderID

	case "schedule":
		if len(args) < 3 {
			return "Usage: trade schedule <symbol> <minutes> [config]"
		}
		minutes, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || minutes <= 0 {
			return "Minutes must be a positive integer."
		}
		configName := config.ResolveConfigName("")
		if len(args) > 3 {
			configName = config.ResolveConfigName(args[3])
		}
		// Resolve the profile up front so a bad config fails at schedule
		// time, not on the first tick.
		if _, err := config.LoadTradeAiSettings(configName); err != nil {
			return fmt.Sprintf("Schedule rejected: %v", err)
		}
		_, err = s.aiScheduler.Schedule(args[1], time.Duration(minutes)*time.Minute, func(ctx context.Context, symbol string) (string, error) {
			return s.aiExecutor.CraftAndPlaceTrade(ctx, symbol, configName)
		})
		if err != nil {
			return fmt.Sprintf("Schedule rejected: %v", err)
		}
		return fmt.Sprintf("Scheduled %s every %d minutes using %s.", strings.ToUpper(args[1]), minutes, configName)

	case "cancel":
		if !s.aiScheduler.Cancel(args[1]) {
			return fmt.Sprintf("No schedule found for %s.", strings.ToUpper(args[1]))
		}
		return fmt.Sprintf("Cancelled schedule for %s.", strings.ToUpper(args[1]))

	default:
		return "Usage: trade place|schedule|cancel <symbol> ..."
	}
}

func (s *Shell) algoCmd(args []string) string {
	if len(args) < 2 {
		return "Usage: algo place|schedule|cancel <symbol> ..."
	}
	switch args[0] {
	case "place":
		if len(args) < 3 {
			return "Usage: algo place <symbol> <strategy>"
		}
		orderID, err := s.algoExecutor.PlaceAlgoTrade(context.Background(), strings.ToUpper(args[1]), args[2])
		if err != nil {
			return fmt.Sprintf("Algo trade failed: %v", err)
		}
		if orderID == "" {
			return "No algo trade placed."
		}
		return "Algo order placed: " + orderID

	case "schedule":
		if len(args) < 4 {
			return "Usage: algo schedule <symbols> <minutes> <strategy>"
		}
		minutes, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || minutes <= 0 {
			return "Minutes must be a positive integer."
		}
		strategyName := args[3]
		scheduled := 0
		for _, symbol := range strings.Split(args[1], ",") {
			if strings.TrimSpace(symbol) == "" {
				continue
			}
			_, err := s.algoScheduler.Schedule(symbol, time.Duration(minutes)*time.Minute, func(ctx context.Context, sym string) (string, error) {
				return s.algoExecutor.PlaceAlgoTrade(ctx, sym, strategyName)
			})
			if err != nil {
				return fmt.Sprintf("Schedule rejected: %v", err)
			}
			scheduled++
		}
		if scheduled == 0 {
			return "No symbols provided to schedule."
		}
		return fmt.Sprintf("Scheduled algo trade for %d symbol(s) every %d minutes using strategy %s.", scheduled, minutes, strategyName)

	case "cancel":
		if !s.algoScheduler.Cancel(args[1]) {
			return fmt.Sprintf("No algo schedule found for %s.", strings.ToUpper(args[1]))
		}
		return fmt.Sprintf("Cancelled algo schedule for %s.", strings.ToUpper(args[1]))

	default:
		return "Usage: algo place|schedule|cancel <symbol> ..."
	}
}

func (s *Shell) positionCmd(args []string) string {
	if len(args) < 6 || args[0] != "size" {
		return "Usage: position size <symbol> <side> <entry> <tp> <sl>"
	}
	side, err := exchange.ParseOrderSide(args[2])
	if err != nil {
		return err.Error()
	}
	prices := make([]decimal.Decimal, 3)
	for i, raw := range args[3:6] {
		prices[i], err = decimal.NewFromString(raw)
		if err != nil {
			return fmt.Sprintf("Invalid price %q", raw)
		}
	}
	proposed, err := position.NewProposedPosition(strings.ToUpper(args[1]), side, prices[0], prices[1], prices[2])
	if err != nil {
		return err.Error()
	}
	order, err := s.sizer.BuildMarketOrder(context.Background(), proposed)
	if err != nil {
		return fmt.Sprintf("Sizing failed: %v", err)
	}
	return fmt.Sprintf("Symbol: %s, Side: %s, Qty: %s, TP: %s, SL: %s",
		order.Symbol, order.Side, order.Quantity, order.TakeProfit, order.StopLoss)
}

func (s *Shell) bybitCmd(args []string) string {
	if len(args) < 1 {
		return "Usage: bybit klines|order ..."
	}
	switch args[0] {
	case "klines":
		if len(args) < 4 {
			return "Usage: bybit klines <symbol> <category> <interval> [limit]"
		}
		category, err := exchange.ParseCategory(args[2])
		if err != nil {
			return err.Error()
		}
		interval, err := exchange.ParseInterval(args[3])
		if err != nil {
			return err.Error()
		}
		limit := 200
		if len(args) > 4 {
			if limit, err = strconv.Atoi(args[4]); err != nil || limit < 1 {
				return "Limit must be a positive integer."
			}
		}
		candles, err := s.ex.GetKlines(context.Background(), strings.ToUpper(args[1]), category, interval, limit)
		if err != nil {
			return fmt.Sprintf("Klines failed: %v", err)
		}
		if len(candles) == 0 {
			return "No klines returned."
		}
		var b strings.Builder
		b.WriteString("startTime,open,high,low,close,volume,turnover")
		for _, c := range candles {
			fmt.Fprintf(&b, "\n%d,%s,%s,%s,%s,%s,%s", c.StartTime, c.Open, c.High, c.Low, c.Close, c.Volume, c.Turnover)
		}
		return b.String()

	case "order":
		if len(args) < 4 {
			return "Usage: bybit order <symbol> <side> <qty> [tp] [sl]"
		}
		side, err := exchange.ParseOrderSide(args[2])
		if err != nil {
			return err.Error()
		}
		qty, err := decimal.NewFromString(args[3])
		if err != nil {
			return fmt.Sprintf("Invalid quantity %q", args[3])
		}
		req := exchange.FuturesMarketOrderRequest{
			Symbol:   strings.ToUpper(args[1]),
			Category: exchange.CategoryLinear,
			Side:     side,
			Quantity: qty,
		}
		if len(args) > 4 {
			if req.TakeProfit, err = decimal.NewFromString(args[4]); err != nil {
				return fmt.Sprintf("Invalid take profit %q", args[4])
			}
		}
		if len(args) > 5 {
			if req.StopLoss, err = decimal.NewFromString(args[5]); err != nil {
				return fmt.Sprintf("Invalid stop loss %q", args[5])
			}
		}
		orderID, err := s.ex.PlaceFuturesMarketOrder(context.Background(), req)
		if err != nil {
			return fmt.Sprintf("Order failed: %v", err)
		}
		if orderID == "" {
			return "Order placed, no order id returned."
		}
		return "Order placed: " + orderID

	default:
		return "Usage: bybit klines|order ..."
	}
}
