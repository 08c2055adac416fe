// Package cli provides terminal I/O, output formatting, and command
// dispatch for the plain (non-TUI) game mode. Time only advances through
// the wait and fight commands, which makes sessions scriptable and
// reproducible.
package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/idlecore/engine"
	"github.com/nathoo/idlecore/engine/sim"
	"github.com/nathoo/idlecore/experience"
	"github.com/nathoo/idlecore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the command loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	title := c.Engine.Catalog.Game.Title
	if title != "" {
		c.printLine(title)
		c.printLine("")
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.dispatch(input) {
			return
		}
	}
}

// Exec runs one command and returns its output instead of writing it.
// The TUI renders output itself but shares this command set.
func (c *CLI) Exec(input string) (output string, quit bool) {
	var buf bytes.Buffer
	prev := c.Out
	c.Out = &buf
	quit = c.dispatch(input)
	c.Out = prev
	return strings.TrimRight(buf.String(), "\n"), quit
}

// dispatch runs one command. Returns true if the session should exit.
func (c *CLI) dispatch(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "quit", "exit", "q":
		if err := c.Engine.Save(); err != nil {
			c.printSystem(fmt.Sprintf("Save failed: %v", err))
		}
		c.printSystem("Goodbye.")
		return true

	case "help", "?":
		c.cmdHelp()

	case "skills":
		c.cmdSkills()

	case "inventory", "i":
		c.cmdInventory()

	case "equipment":
		c.cmdEquipment()

	case "status", "st":
		c.cmdStatus()

	case "actions":
		c.cmdActions(args)

	case "start":
		c.cmdStart(args)

	case "stop":
		c.Engine.Store.StopAction()
		c.printSystem("Action stopped.")

	case "wait", "z":
		c.cmdWait(args)

	case "equip":
		c.cmdEquip(args)

	case "unequip":
		c.cmdUnequip(args)

	case "shop":
		c.cmdShop(args)

	case "buy":
		c.cmdBuy(args)

	case "sell":
		c.cmdSell(args)

	case "fight":
		c.cmdFight(args)

	case "save":
		if err := c.Engine.Save(); err != nil {
			c.printSystem(fmt.Sprintf("Save failed: %v", err))
		} else {
			c.printSystem("Game saved.")
		}

	case "export":
		c.cmdExport(args)

	case "import":
		c.cmdImport(args)

	case "reset":
		if err := c.Engine.Reset(); err != nil {
			c.printSystem(fmt.Sprintf("Reset failed: %v", err))
		} else {
			c.printSystem("Progress wiped.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}
	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Progress:",
		"  skills                — Skill levels and experience",
		"  inventory (i)         — What you're carrying",
		"  equipment             — What you're wearing",
		"  status (st)           — Gold and current action",
		"",
		"Skilling:",
		"  actions [skill]       — List available actions",
		"  start <action>        — Begin an action",
		"  stop                  — Stop the current action",
		"  wait <duration> (z)   — Let time pass (e.g. wait 30s, wait 2h)",
		"",
		"Gear and trade:",
		"  equip <item>          — Wear or wield an item",
		"  unequip <slot>        — Take a slot off",
		"  shop [id]             — Browse shops",
		"  buy <shop> <item> [n] — Buy from a shop",
		"  sell <item> [n]       — Sell for gold",
		"",
		"Combat:",
		"  fight <monster> <duration> — Fight for a stretch of time",
		"",
		"System:",
		"  save                  — Save now (also saves on quit)",
		"  export <file>         — Write the save to a file",
		"  import <file>         — Load a save file (it gets re-validated)",
		"  reset                 — Wipe all progress",
		"  quit (q)              — Save and exit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdSkills() {
	for _, id := range types.AllSkills {
		xp := c.Engine.Store.SkillXP(id)
		level := experience.LevelForXP(xp)
		c.printLine(fmt.Sprintf("%-12s %3d  (%.0f xp)", id, level, xp))
	}
}

func (c *CLI) cmdInventory() {
	inv := c.Engine.Store.Inventory()
	if len(inv) == 0 {
		c.printLine("Your inventory is empty.")
		return
	}
	for _, id := range sortedItemIDs(inv) {
		c.printLine(fmt.Sprintf("%-20s x%d", c.itemName(id), inv[id]))
	}
	c.printLine(fmt.Sprintf("%-20s %d", "Gold", c.Engine.Store.Gold()))
}

func (c *CLI) cmdEquipment() {
	equipped := c.Engine.Store.Equipment()
	if len(equipped) == 0 {
		c.printLine("Nothing equipped.")
		return
	}
	for _, slot := range types.AllEquipmentSlots {
		if id, ok := equipped[slot]; ok {
			c.printLine(fmt.Sprintf("%-8s %s", slot, c.itemName(id)))
		}
	}
}

func (c *CLI) cmdStatus() {
	c.printLine(fmt.Sprintf("Gold: %d", c.Engine.Store.Gold()))
	action := c.Engine.Store.CurrentAction()
	if action == nil {
		c.printLine("Idle.")
		return
	}
	def, _ := c.Engine.Catalog.Action(action.ActionID)
	c.printLine(fmt.Sprintf("Doing: %s (%s), %.0f/%.0f ms",
		def.Name, action.SkillID, action.ElapsedMs, action.Duration))
}

func (c *CLI) cmdActions(args []string) {
	skills := types.AllSkills
	if len(args) > 0 {
		skills = []types.SkillID{types.SkillID(strings.ToLower(args[0]))}
	}
	for _, skill := range skills {
		defs := c.Engine.Catalog.ActionsForSkill(skill)
		if len(defs) == 0 {
			continue
		}
		c.printLine(string(skill) + ":")
		playerLevel := c.Engine.Store.SkillLevel(skill)
		for _, def := range defs {
			lock := ""
			if def.LevelRequired > playerLevel {
				lock = "  [locked]"
			}
			c.printLine(fmt.Sprintf("  %-16s lvl %2d  %4.0f xp  %4.1fs%s",
				def.ID, def.LevelRequired, def.XP, def.Duration/1000, lock))
		}
	}
}

func (c *CLI) cmdStart(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: start <action>")
		return
	}
	def, ok := c.Engine.Catalog.Action(args[0])
	if !ok {
		c.printSystem(fmt.Sprintf("No such action: %s", args[0]))
		return
	}
	if err := c.Engine.Store.StartAction(def); err != nil {
		c.printSystem(fmt.Sprintf("Can't start %s: %v", def.ID, err))
		return
	}
	c.printSystem(fmt.Sprintf("Started %s.", def.Name))
}

func (c *CLI) cmdWait(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: wait <duration> (e.g. wait 30s, wait 2h)")
		return
	}
	d, err := parseDuration(args[0])
	if err != nil {
		c.printSystem(fmt.Sprintf("Bad duration %q: %v", args[0], err))
		return
	}
	if c.Engine.Store.CurrentAction() == nil {
		c.printSystem("Nothing in progress. Use start <action> first.")
		return
	}

	result := c.Engine.Tick(float64(d.Milliseconds()))
	c.printLine(fmt.Sprintf("%d completions over %s.", result.Completions, d))
	for skill, xp := range result.XPBySkill {
		c.printLine(fmt.Sprintf("  +%.0f %s xp", xp, skill))
	}
	for _, id := range sortedItemIDs(result.ItemsGained) {
		c.printLine(fmt.Sprintf("  +%d %s", result.ItemsGained[id], c.itemName(id)))
	}
	if result.StopReason == sim.StopOutOfMaterials {
		c.printSystem("Ran out of materials; action stopped.")
	}
}

func (c *CLI) cmdEquip(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: equip <item>")
		return
	}
	if err := c.Engine.Store.EquipItem(args[0]); err != nil {
		c.printSystem(fmt.Sprintf("Can't equip %s: %v", args[0], err))
		return
	}
	c.printSystem(fmt.Sprintf("Equipped %s.", c.itemName(args[0])))
}

func (c *CLI) cmdUnequip(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: unequip <slot>")
		return
	}
	slot := types.EquipmentSlot(strings.ToLower(args[0]))
	if !c.Engine.Store.UnequipSlot(slot) {
		c.printSystem(fmt.Sprintf("Nothing equipped in %s.", slot))
		return
	}
	c.printSystem(fmt.Sprintf("Unequipped %s.", slot))
}

func (c *CLI) cmdShop(args []string) {
	if len(args) == 0 {
		ids := make([]string, 0, len(c.Engine.Catalog.Shops))
		for id := range c.Engine.Catalog.Shops {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			c.printLine(fmt.Sprintf("%-12s %s", id, c.Engine.Catalog.Shops[id].Name))
		}
		return
	}
	shop, ok := c.Engine.Catalog.Shop(args[0])
	if !ok {
		c.printSystem(fmt.Sprintf("No such shop: %s", args[0]))
		return
	}
	c.printLine(shop.Name + ":")
	for _, entry := range shop.Items {
		c.printLine(fmt.Sprintf("  %-20s %d gold", c.itemName(entry.ItemID), entry.BuyPrice))
	}
}

func (c *CLI) cmdBuy(args []string) {
	if len(args) < 2 {
		c.printSystem("Usage: buy <shop> <item> [quantity]")
		return
	}
	qty := parseQuantity(args, 2)
	if err := c.Engine.Store.Buy(args[0], args[1], qty); err != nil {
		c.printSystem(fmt.Sprintf("Can't buy %s: %v", args[1], err))
		return
	}
	c.printSystem(fmt.Sprintf("Bought %d x %s.", qty, c.itemName(args[1])))
}

func (c *CLI) cmdSell(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: sell <item> [quantity]")
		return
	}
	qty := parseQuantity(args, 1)
	if err := c.Engine.Store.Sell(args[0], qty); err != nil {
		c.printSystem(fmt.Sprintf("Can't sell %s: %v", args[0], err))
		return
	}
	c.printSystem(fmt.Sprintf("Sold %d x %s.", qty, c.itemName(args[0])))
}

func (c *CLI) cmdFight(args []string) {
	if len(args) < 2 {
		c.printSystem("Usage: fight <monster> <duration>")
		return
	}
	d, err := parseDuration(args[1])
	if err != nil {
		c.printSystem(fmt.Sprintf("Bad duration %q: %v", args[1], err))
		return
	}

	combat, err := c.Engine.StartCombat(args[0], engine.StyleAttack)
	if err != nil {
		c.printSystem(fmt.Sprintf("Can't fight %s: %v", args[0], err))
		return
	}

	loot := map[string]int{}
	dealt, taken := 0, 0
	died := false
	remaining := float64(d.Milliseconds())
	for remaining > 0 && !died {
		step := 1000.0
		if remaining < step {
			step = remaining
		}
		remaining -= step

		events, over := c.Engine.TickCombat(combat, step)
		for _, ev := range events {
			switch ev.Kind {
			case "player_hit":
				dealt += ev.Damage
			case "monster_hit":
				taken += ev.Damage
			case "loot":
				loot[ev.ItemID] += ev.Quantity
			}
		}
		died = over
	}

	c.printLine(fmt.Sprintf("Fought %s for %s: %d kills, %d damage dealt, %d taken.",
		combat.Monster.Name, d, combat.Kills, dealt, taken))
	for _, id := range sortedItemIDs(loot) {
		c.printLine(fmt.Sprintf("  +%d %s", loot[id], c.itemName(id)))
	}
	if died {
		c.printSystem("You were defeated and retreated to safety.")
	}
}

func (c *CLI) cmdExport(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: export <file>")
		return
	}
	raw, err := c.Engine.Export()
	if err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	if err := os.WriteFile(args[0], raw, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Export failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Save written to %s.", args[0]))
}

func (c *CLI) cmdImport(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: import <file>")
		return
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		c.printSystem(fmt.Sprintf("Import failed: %v", err))
		return
	}
	report, err := c.Engine.Import(raw)
	if err != nil {
		c.printSystem(fmt.Sprintf("Import failed: %v", err))
		return
	}
	if !report.ChecksumOK {
		c.printSystem("Warning: save checksum did not match; it may have been edited.")
	}
	for _, issue := range report.Warnings {
		c.printSystem(fmt.Sprintf("Repaired %s: %s", issue.Field, issue.Message))
	}
	c.printSystem(fmt.Sprintf("Save imported from %s.", args[0]))
}

func (c *CLI) itemName(id string) string {
	if item, ok := c.Engine.Catalog.Item(id); ok && item.Name != "" {
		return item.Name
	}
	if def, ok := c.Engine.Catalog.EquipmentDef(id); ok && def.Name != "" {
		return def.Name
	}
	return id
}

// parseDuration accepts Go duration syntax plus a bare millisecond count.
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	return d, nil
}

func parseQuantity(args []string, idx int) int {
	if len(args) <= idx {
		return 1
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func sortedItemIDs(m map[string]int) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
