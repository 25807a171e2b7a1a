// Package record emits the structured content.json form of a mind-map.
//
// content.json is a JSON array holding one sheet record. Each topic record
// carries an explicit parentId back-reference so readers can walk upward
// without re-walking the tree:
//
//	[{
//	  "id": "...", "class": "sheet", "title": "Sheet 1", "parentId": null, "timestamp": 1700000000000,
//	  "rootTopic": {
//	    "id": "a", "class": "topic", "title": "A", "structureClass": "org.xmind.ui.logic.right",
//	    "children": {"attached": [{"id": "b", "class": "topic", "title": "B", "parentId": "a"}]}
//	  },
//	  "relationships": []
//	}]
package record
