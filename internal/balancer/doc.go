// Package balancer plans Satisfactory splitter layouts. A fan-out is
// "clean" when it is expressible as 2^a*3^b, i.e. buildable from 1-to-2
// and 1-to-3 splitters without loop-backs. The planner finds the nearest
// clean sizes and the splitter-layer ordering with the fewest components.
package balancer
