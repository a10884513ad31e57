package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hupe1980/compmesh/assembly"
	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/framework"
	"github.com/hupe1980/compmesh/kernel"
)

func newInspectCmd() *cobra.Command {
	var adder string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Apply an assembly to a fresh kernel and print the resulting graph",
		Long: `Apply an assembly file to a fresh kernel with the sample types registered
and print its components, connections, framework bindings and exposures.

Interceptors may use the host "samples", which serves Pre0, Pre1, Post0 and
CheckRules bound to the Adder named by --adder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMesh()
			if err != nil {
				return err
			}

			res, err := m.ApplyFile(cmd.Context(), args[0], func(o *assembly.Options) {
				o.Hosts = map[string]any{"samples": m.SampleHooks(adder)}
			})
			if err != nil {
				return err
			}

			return printGraph(cmd.OutOrStdout(), m.Kernel(), res)
		},
	}

	cmd.Flags().StringVar(&adder, "adder", "Adder", "instance name of the Adder the sample hooks consult")

	return cmd
}

func printGraph(w io.Writer, k *kernel.Kernel, res *assembly.Result) error {
	fmt.Fprintln(w, "Components:")
	for _, h := range k.EnumComponents() {
		name, _ := k.ComponentName(h)
		typ, _ := k.ComponentType(h)
		fmt.Fprintf(w, "  %-4d %-16s %s\n", h.ID(), name, typ)

		if meta, ok := h.QueryInterface(core.IMetaInterface).(core.MetaInterface); ok {
			for _, iid := range meta.EnumInterfaces() {
				printAttrs(w, "interface", iid, meta.AllValues(core.ScopeInterface, iid))
			}
			for _, r := range meta.EnumReceptacles() {
				fmt.Fprintf(w, "       receptacle %s (%s)\n", r.InterfaceType, r.Kind)
				printAttrs(w, "receptacle", r.InterfaceType, meta.AllValues(core.ScopeReceptacle, r.InterfaceType))
			}
		}

		for _, iid := range interceptedInterfaces(k, h) {
			d, _ := k.Delegator(h, iid)
			fmt.Fprintf(w, "       %s pre=%v post=%v\n", iid, d.ViewPreMethods(), d.ViewPostMethods())
		}
	}

	fmt.Fprintln(w, "Connections:")
	for _, info := range k.Connections() {
		fmt.Fprintf(w, "  %-4d %s -> %s (%s)\n", info.ID, label(k, info.Source), label(k, info.Sink), info.InterfaceType)
	}

	if res.Framework == nil {
		return nil
	}

	cf, ok := res.Framework.QueryInterface(core.ICFMetaInterface).(framework.CFMetaInterface)
	if !ok {
		return nil
	}

	fmt.Fprintf(w, "Framework %s:\n", label(k, res.Framework))
	for _, h := range cf.InternalComponents() {
		fmt.Fprintf(w, "  member %s\n", label(k, h))
		for _, b := range cf.BoundComponents(h) {
			fmt.Fprintf(w, "    #%d <-> %s\n", b.ID, label(k, b.Peer))
		}
	}
	for _, e := range cf.ExposedInterfaces() {
		fmt.Fprintf(w, "  exposes interface %s of %s\n", e.InterfaceType, label(k, e.Component))
	}
	for _, e := range cf.ExposedReceptacles() {
		fmt.Fprintf(w, "  exposes receptacle %s (%s) of %s\n", e.InterfaceType, e.Kind, label(k, e.Component))
	}

	return nil
}

func printAttrs(w io.Writer, scope, iid string, attrs map[string]core.TypedAttribute) {
	names := make([]string, 0, len(attrs))
	for n := range attrs {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		fmt.Fprintf(w, "       %s %s: %s %s = %v\n", scope, iid, n, attrs[n].Kind, attrs[n].Value)
	}
}

// interceptedInterfaces lists h's capabilities whose delegator carries hooks.
func interceptedInterfaces(k *kernel.Kernel, h *core.Handle) []string {
	reg, ok := k.ComponentType(h)
	if !ok {
		return nil
	}

	r, ok := k.Registration(reg)
	if !ok {
		return nil
	}

	var out []string
	for _, iid := range r.InterfaceNames() {
		d, ok := k.Delegator(h, iid)
		if ok && (len(d.ViewPreMethods()) > 0 || len(d.ViewPostMethods()) > 0) {
			out = append(out, iid)
		}
	}

	return out
}

func label(k *kernel.Kernel, h *core.Handle) string {
	if name, ok := k.ComponentName(h); ok && name != "" {
		return name
	}
	return h.String()
}
