// Package markup emits the legacy XMind content.xml form of a mind-map.
//
// The emitted document has a single sheet holding the root topic followed by
// the relationship list:
//
//	<xmap-content xmlns="urn:xmind:xmap:xmlns:content:2.0" ... version="2.0">
//	  <sheet id="...">
//	    <root-topic id="..." structure-class="org.xmind.ui.logic.right">
//	      <title>A</title>
//	      <children><topics type="attached"><topic id="..."><title>B</title></topic></topics></children>
//	    </root-topic>
//	    <relationship id="..."><end1><topic id="..."/></end1><end2><topic id="..."/></end2></relationship>
//	  </sheet>
//	</xmap-content>
//
// Topics are converted by a [mindmap.TopicVisitor], so the markup form is
// parent-implicit: nesting is the only link between a topic and its parent.
package markup
