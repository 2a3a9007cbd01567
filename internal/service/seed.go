package service

import (
	"context"

	"go.uber.org/zap"

	"forge/internal/content"
)

// Seeder populates an empty store with starter content for dev
// environments. A store that already has strategies is left alone.
type Seeder struct {
	Strategies *content.Strategies
	Posts      *content.Posts
	Logger     *zap.Logger
}

func (s *Seeder) SeedIfEmpty(ctx context.Context) error {
	existing, err := s.Strategies.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, data := range sampleStrategies {
		if _, err := s.Strategies.Create(ctx, data); err != nil {
			return err
		}
	}
	for _, data := range samplePosts {
		if _, err := s.Posts.Create(ctx, data); err != nil {
			return err
		}
	}
	if s.Logger != nil {
		s.Logger.Info("seeded sample content",
			zap.Int("strategies", len(sampleStrategies)),
			zap.Int("posts", len(samplePosts)),
		)
	}
	return nil
}

var sampleStrategies = []map[string]any{
	{
		"name":        "Lido + Arbitrum Yield Strategy",
		"description": "Maximize yield by staking ETH with Lido and bridging to Arbitrum for additional DeFi opportunities.",
		"apy":         31.2,
		"risk":        "Low",
		"tvl":         25000000,
		"chains":      []any{"Ethereum", "Arbitrum"},
		"protocols":   []any{"Lido", "Arbitrum Bridge", "Curve", "Convex"},
		"category":    "Liquid Staking",
		"tags":        []any{"Liquid Staking", "Cross-chain", "Low Risk", "High Yield"},
		"steps": []any{
			"Stake ETH on Lido for stETH",
			"Bridge stETH to Arbitrum",
			"Provide liquidity on Curve stETH/ETH pool",
			"Stake LP tokens on Convex for additional rewards",
		},
		"featured":      true,
		"timeToSetup":   "15 min",
		"minInvestment": 100,
		"maxInvestment": 1000000,
		"author":        "Forge Team",
		"lastUpdated":   "2024-01-15",
	},
	{
		"name":        "Curve 3Pool + Convex Strategy",
		"description": "Earn stable yields by providing liquidity to Curve's 3Pool and maximizing rewards through Convex.",
		"apy":         8.5,
		"risk":        "Low",
		"tvl":         15000000,
		"chains":      []any{"Ethereum"},
		"protocols":   []any{"Curve", "Convex"},
		"category":    "Stablecoin",
		"tags":        []any{"Stablecoin", "Low Risk", "Stable Yield"},
		"steps": []any{
			"Acquire USDC, USDT, and DAI in equal amounts",
			"Provide liquidity to Curve's 3Pool",
			"Stake LP tokens on Convex for additional rewards",
		},
		"featured":      false,
		"timeToSetup":   "10 min",
		"minInvestment": 500,
		"maxInvestment": 100000,
		"author":        "Forge Team",
		"lastUpdated":   "2024-01-10",
	},
}

var samplePosts = []map[string]any{
	{
		"slug":        "getting-started-with-defi-yield",
		"title":       "Getting Started with DeFi Yield Strategies",
		"excerpt":     "A practical introduction to yield farming, liquid staking, and the risk trade-offs between them.",
		"content":     "## Why yield strategies\n\nDeFi yield comes from trading fees, token emissions, and staking rewards...",
		"author":      "Forge Team",
		"category":    "Education",
		"tags":        []any{"DeFi", "Yield", "Beginners"},
		"readTime":    8,
		"featured":    true,
		"publishedAt": "2024-01-12",
	},
	{
		"slug":        "understanding-liquid-staking",
		"title":       "Understanding Liquid Staking",
		"excerpt":     "How liquid staking tokens keep your stake productive across the DeFi stack.",
		"content":     "Liquid staking lets you stake ETH while receiving a transferable receipt token...",
		"author":      "Forge Team",
		"category":    "Strategy",
		"tags":        []any{"Liquid Staking", "Ethereum"},
		"readTime":    6,
		"featured":    false,
		"publishedAt": "2024-01-08",
	},
}
