package grade

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCostTable rejects tables that would produce negative or
// reroll-decreasing costs.
var ErrInvalidCostTable = errors.New("invalid cost table")

// #region cost-table
// CostTable holds the coefficients for endo and kuva costs.
//
//	endo = max(0, EndoPerMastery*(mr-EndoMasteryFloor) + floor(EndoRankBase*2^rank) + EndoPerReroll*rerolls - EndoOffset)
//	kuva = sum of KuvaSchedule[min(i, len-1)] for i in [0, rerolls)
type CostTable struct {
	EndoMasteryFloor int     `yaml:"endo_mastery_floor"`
	EndoPerMastery   int     `yaml:"endo_per_mastery"`
	EndoRankBase     float64 `yaml:"endo_rank_base"`
	EndoPerReroll    int     `yaml:"endo_per_reroll"`
	EndoOffset       int     `yaml:"endo_offset"`
	KuvaSchedule     []int   `yaml:"kuva_schedule"`
}

// DefaultCostTable returns the dissolution and cycling costs used in game.
func DefaultCostTable() CostTable {
	return CostTable{
		EndoMasteryFloor: 8,
		EndoPerMastery:   100,
		EndoRankBase:     22.5,
		EndoPerReroll:    200,
		EndoOffset:       7,
		KuvaSchedule:     []int{900, 1000, 1200, 1400, 1700, 2000, 2350, 2750, 3150, 3500},
	}
}

// Validate checks the monotonicity and sign constraints.
func (c CostTable) Validate() error {
	if c.EndoPerReroll < 0 {
		return fmt.Errorf("%w: endo_per_reroll %d < 0", ErrInvalidCostTable, c.EndoPerReroll)
	}
	if c.EndoRankBase < 0 {
		return fmt.Errorf("%w: endo_rank_base %v < 0", ErrInvalidCostTable, c.EndoRankBase)
	}
	if len(c.KuvaSchedule) == 0 {
		return fmt.Errorf("%w: empty kuva_schedule", ErrInvalidCostTable)
	}
	for i, v := range c.KuvaSchedule {
		if v < 0 {
			return fmt.Errorf("%w: kuva_schedule[%d] = %d < 0", ErrInvalidCostTable, i, v)
		}
	}
	return nil
}

// LoadCostTable reads a YAML cost table. Fields missing from the file keep
// their default values.
func LoadCostTable(path string) (CostTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CostTable{}, fmt.Errorf("read cost table: %w", err)
	}
	table := DefaultCostTable()
	if err := yaml.Unmarshal(data, &table); err != nil {
		return CostTable{}, fmt.Errorf("parse cost table %s: %w", path, err)
	}
	if err := table.Validate(); err != nil {
		return CostTable{}, err
	}
	return table, nil
}

// #endregion cost-table

// #region costs
// EndoCost is the endo returned by dissolving the mod.
func (c CostTable) EndoCost(masteryRank, rerolls, modRank int) int {
	endo := c.EndoPerMastery*(masteryRank-c.EndoMasteryFloor) +
		int(math.Floor(c.EndoRankBase*math.Pow(2, float64(modRank)))) +
		c.EndoPerReroll*rerolls -
		c.EndoOffset
	if endo < 0 {
		return 0
	}
	return endo
}

// KuvaCost is the total kuva spent to reach the given reroll count.
func (c CostTable) KuvaCost(rerolls int) int {
	if len(c.KuvaSchedule) == 0 {
		return 0
	}
	last := len(c.KuvaSchedule) - 1
	total := 0
	for i := 0; i < rerolls; i++ {
		total += c.KuvaSchedule[min(i, last)]
	}
	return total
}

// #endregion costs
