package snowflake

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	node, _ = snowflake.NewNode(1)
}

func GenID() int64 {
	return node.Generate().Int64()
}

// GenStringID 本地实体（记录/餐食/评论）统一使用字符串形式的 ID
func GenStringID() string {
	return strconv.FormatInt(GenID(), 10)
}
