// Package coach provides the canned coaching responder. It is a static
// rule set keyed on substring matching, not an inference system.
package coach

import (
	"fmt"
	"sort"
	"strings"

	"paper-trader/internal/models"
)

// Context is the portfolio state a response may reference.
type Context struct {
	Positions []*models.Position
	Balance   float64
	TotalPnL  float64
}

// Respond returns canned coaching text for a question. Rules are checked in
// order; the first keyword match wins.
func Respond(question string, ctx Context) string {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, "portfolio", "holdings"):
		return portfolioAnswer(ctx)
	case containsAny(q, "buy", "invest", "recommend"):
		return "For beginners, established large caps are the steadier starting point:\n\n" +
			"1. AAPL - Stable tech giant\n" +
			"2. MSFT - Consistent growth\n" +
			"3. NVDA - AI/Tech leader\n\n" +
			"Always size positions to your risk tolerance, and use stop-loss orders to protect your capital."
	case containsAny(q, "sell", "exit"):
		return sellAnswer(ctx)
	case containsAny(q, "risk", "stop loss", "protect"):
		return "Risk management basics:\n\n" +
			"1. Never risk more than 2% of your portfolio on a single trade\n" +
			"2. Always use stop-losses, 5-10% for volatile stocks\n" +
			"3. Take profits at predetermined levels (10-20% for short-term)\n" +
			"4. Diversify across at least 5-10 different stocks\n" +
			"5. Keep some cash (20-30%) for opportunities"
	case containsAny(q, "beginner", "start", "new"):
		return "Welcome to investing! A few ground rules:\n\n" +
			"1. Start small, with money you can afford to lose\n" +
			"2. Learn the basics: P/E ratios, market cap, trends\n" +
			"3. Blue chips first (AAPL, MSFT, GOOGL)\n" +
			"4. Practice patience, don't chase quick gains\n" +
			"5. Paper trading is exactly the right place to practice"
	case containsAny(q, "strategy", "approach"):
		return "Three popular strategies to consider:\n\n" +
			"1. Buy & Hold - pick quality stocks and hold long-term\n" +
			"2. Swing Trading - hold for days or weeks, capitalize on price swings\n" +
			"3. Momentum Trading - follow trends, buy stocks showing upward momentum\n\n" +
			"For this simulator, swing trading with stop-losses is good practice."
	default:
		return "I can help you with:\n\n" +
			"- Portfolio analysis: ask about your holdings\n" +
			"- Buy ideas: ask what to buy\n" +
			"- Risk management: ask about stop-losses\n" +
			"- Trading strategies: ask about approaches\n\n" +
			"What would you like to know?"
	}
}

func portfolioAnswer(ctx Context) string {
	if len(ctx.Positions) == 0 {
		return "You haven't made any investments yet. Consider starting with well-established " +
			"companies like AAPL or MSFT, and putting 10-20% of your available cash to work first."
	}

	parts := make([]string, 0, len(ctx.Positions))
	sorted := append([]*models.Position(nil), ctx.Positions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })
	for _, p := range sorted {
		parts = append(parts, fmt.Sprintf("%s (%+.1f%%)", p.Symbol, p.PnLPercent()))
	}

	verdict := "Your portfolio is currently down, but stay focused on your long-term strategy."
	if ctx.TotalPnL >= 0 {
		verdict = "Great job, your portfolio is in profit."
	}
	return fmt.Sprintf("Your current positions: %s. %s Consider diversifying across sectors to reduce risk.",
		strings.Join(parts, ", "), verdict)
}

func sellAnswer(ctx Context) string {
	if len(ctx.Positions) == 0 {
		return "You don't have any positions to sell right now. When you do, sell when a stock " +
			"hits your profit target or when the fundamentals change significantly."
	}

	best := ctx.Positions[0]
	for _, p := range ctx.Positions[1:] {
		if p.PnLPercent() > best.PnLPercent() {
			best = p
		}
	}

	pnl := best.PnLPercent()
	advice := "It might be worth holding for more upside."
	if pnl > 10 {
		advice = "You might consider taking some profits here."
	}
	return fmt.Sprintf("Your best performer is %s at %+.2f%%. %s Always stick to your trading plan.",
		best.Symbol, pnl, advice)
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
