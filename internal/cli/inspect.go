package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janelia-anibody/mjcfutil/pkg/mjcf"
	"github.com/janelia-anibody/mjcfutil/pkg/physics"
	"github.com/janelia-anibody/mjcfutil/pkg/quat"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	site string
	body string
}

// inspectCommand creates the inspect command for physics queries.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <model.xml>",
		Short: "Summarize joints, actuators, and physics parameters",
		Long: `Inspect lists every joint with its degree-of-freedom assignment and
declared dynamics, and every actuator with its gain/bias
parametrization. Critical damping is computed from the subtree inertia
where the model declares explicit inertials.

With --site and --body, inspect instead reports the site's position
expressed in the body's local frame at the reference pose.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.site, "site", "", "site to express in a body frame (requires --body)")
	cmd.Flags().StringVar(&opts.body, "body", "", "body frame for the --site query")

	return cmd
}

func (c *CLI) runInspect(input string, opts inspectOpts) error {
	m, err := c.loadModel(input)
	if err != nil {
		return err
	}

	if opts.site != "" || opts.body != "" {
		return c.inspectSite(m, opts)
	}

	name := m.Name()
	if name == "" {
		name = input
	}
	fmt.Println(StyleTitle.Render(name))

	if mass := totalMass(m); mass > 0 {
		printKeyValue("total mass", fmtFloat(mass))
	}

	c.printJoints(m)
	c.printActuators(m)
	return nil
}

func (c *CLI) inspectSite(m *mjcf.Model, opts inspectOpts) error {
	if opts.site == "" || opts.body == "" {
		printError("--site and --body must be given together")
		return fmt.Errorf("incomplete site query")
	}
	k, err := physics.Forward(m)
	if err != nil {
		return err
	}
	local, err := k.SiteInBodyFrame(opts.body, opts.site)
	if err != nil {
		return err
	}
	world, err := k.SiteWorldPos(opts.site)
	if err != nil {
		return err
	}
	printKeyValue("site", opts.site)
	printKeyValue("body", opts.body)
	printKeyValue("world pos", fmtVec(world))
	printKeyValue("local pos", fmtVec(local))
	return nil
}

func (c *CLI) printJoints(m *mjcf.Model) {
	table := physics.DofTable(m)
	if len(table) == 0 {
		printDetail("no joints")
		return
	}

	fmt.Println()
	fmt.Println(StyleTitle.Render("Joints"))
	for _, j := range table {
		name := j.Name
		if name == "" {
			name = "(unnamed)"
		}
		printInfo("%s %s", StyleValue.Render(name), StyleDim.Render(j.Type))
		printDetail("body %s, dofs %s", j.Body, fmtInts(j.DofIDs))
		if j.Stiffness != 0 || j.Damping != 0 {
			printDetail("stiffness %s, damping %s", fmtFloat(j.Stiffness), fmtFloat(j.Damping))
		}
		if j.Type == physics.JointHinge || j.Type == physics.JointSlide {
			c.printCriticalDamping(m, j)
		}
	}
}

// printCriticalDamping reports 2*sqrt(k*I) for a scalar joint when the
// spring constant and subtree inertials are declared. Models without
// explicit inertials are silently skipped.
func (c *CLI) printCriticalDamping(m *mjcf.Model, j physics.JointInfo) {
	if j.Name == "" || j.Stiffness == 0 {
		return
	}
	d, err := physics.CriticalDamping(m, j.Name, physics.DampingOptions{JointSpring: true})
	if err != nil {
		c.Logger.Debug("critical damping unavailable", "joint", j.Name, "err", err)
		return
	}
	printDetail("critical damping %s", fmtFloat(d))
}

func (c *CLI) printActuators(m *mjcf.Model) {
	acts := m.Actuators()
	if len(acts) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(StyleTitle.Render("Actuators"))
	for _, el := range acts {
		p := physics.Params(el)
		name := p.Name
		if name == "" {
			name = "(unnamed)"
		}
		kind := el.Tag
		if physics.IsPositionActuator(el) {
			kind += ", position servo"
		}
		printInfo("%s %s", StyleValue.Render(name), StyleDim.Render(kind))
		printDetail("gainprm %s, biasprm %s, biastype %s",
			fmtVec(quat.Vec3(p.GainPrm)), fmtVec(quat.Vec3(p.BiasPrm)), p.BiasType)
	}
}

// totalMass sums the declared inertial mass over all named top-level
// bodies. Anonymous roots contribute nothing, matching what the subtree
// queries can address.
func totalMass(m *mjcf.Model) float64 {
	wb := m.Worldbody()
	if wb == nil {
		return 0
	}
	total := 0.0
	for _, b := range wb.ChildrenByTag("body") {
		name := b.Name()
		if name == "" {
			continue
		}
		mass, err := physics.SubtreeMass(m, name)
		if err != nil {
			continue
		}
		total += mass
	}
	return total
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func fmtVec(v quat.Vec3) string {
	return fmt.Sprintf("(%s, %s, %s)", fmtFloat(v[0]), fmtFloat(v[1]), fmtFloat(v[2]))
}

func fmtInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
