package hdlparser

import (
	"testing"

	"github.com/flanksource/hdl-checker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerilog_Module(t *testing.T) {
	src := `
module mod_a (input clk);
endmodule
`
	result := ParseVerilog([]byte(src), models.Verilog)
	require.Len(t, result.DesignUnits, 1)
	assert.Equal(t, models.VerilogModule, result.DesignUnits[0].Kind)
	assert.Equal(t, "mod_a", result.DesignUnits[0].Name.String())
}

func TestParseVerilog_Import(t *testing.T) {
	src := `
import mod_a::*;
module top;
endmodule
`
	result := ParseVerilog([]byte(src), models.SystemVerilog)
	require.Len(t, result.Dependencies, 1)
	assert.Equal(t, "mod_a", result.Dependencies[0].Name.String())
}

func TestParseVerilog_Instantiation(t *testing.T) {
	src := `
module top;
  mod_a inst1 (.clk(clk));
  mod_a #(8) inst2 (.clk(clk));
endmodule
`
	result := ParseVerilog([]byte(src), models.Verilog)
	require.Len(t, result.Dependencies, 2)
	for _, dep := range result.Dependencies {
		assert.Equal(t, "mod_a", dep.Name.String())
	}
}

func TestParseVerilog_Include(t *testing.T) {
	src := "`include \"defs.vh\"\nmodule top;\nendmodule\n"
	result := ParseVerilog([]byte(src), models.Verilog)
	require.Len(t, result.Includes, 1)
	assert.Equal(t, "defs.vh", result.Includes[0].Target)
}

func TestParseVerilog_CaseSensitiveIdentity(t *testing.T) {
	a := models.NewVerilogIdentifier("Foo")
	b := models.NewVerilogIdentifier("foo")
	assert.False(t, a.Equal(b))
}

func TestParseVerilog_KeywordsNotTreatedAsInstantiations(t *testing.T) {
	src := `
module top;
  always_ff @(posedge clk) begin
    if (rst) begin
    end
  end
endmodule
`
	result := ParseVerilog([]byte(src), models.Verilog)
	assert.Empty(t, result.Dependencies)
}
